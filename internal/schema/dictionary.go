package schema

const genericColumnNote = "Column data"

// columnNotes is the hand-maintained business glossary for the warehouse
// dataset. Columns missing here fall back to a generic note rather than being
// dropped from the context.
var columnNotes = map[string]map[string]string{
	"dc_order_lines": {
		"order_number":       "Sales order number",
		"line_id":            "Order line identifier within the order",
		"ordered_item":       "Item code as ordered",
		"item_description":   "Human readable item description",
		"ordered_date":       "Date the order line was placed",
		"schedule_ship_date": "Date the line is scheduled to ship",
		"ordered_qty":        "Units ordered on the line",
		"reserved_qty":       "Units reserved against inventory",
		"sold_to":            "Customer the order was sold to",
		"ship_to":            "Destination the line ships to",
		"dc":                 "Distribution center fulfilling the line",
		"line_status":        "Current fulfillment status of the line",
		"hold_applied_flag":  "1 when a hold is applied to the line, 0 otherwise",
		"routed_flag":        "1 when the line has been sent to routing, 0 otherwise",
		"planned_flag":       "1 when the line is on a route plan, 0 otherwise",
		"trip_id":            "Trip the line is planned on, if any",
		"vendor":             "Vendor supplying the item",
		"product_group":      "Product group the item belongs to",
	},
	"route_plans": {
		"trip_id":      "Trip identifier",
		"route_id":     "Route identifier within the trip",
		"carrier":      "Carrier assigned to the route",
		"dc":           "Distribution center the route departs from",
		"stop_count":   "Number of stops on the route",
		"planned_date": "Date the route was planned",
		"depart_date":  "Scheduled departure date",
		"total_units":  "Total units planned on the route",
		"status":       "Planning status of the route",
	},
}

func describeColumn(table, column string) string {
	if notes, ok := columnNotes[table]; ok {
		if note, ok := notes[column]; ok {
			return note
		}
	}
	return genericColumnNote
}
