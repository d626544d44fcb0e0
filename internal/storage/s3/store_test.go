package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/talkdata/talkdata/internal/storage"
)

type fakeClient struct {
	objects map[string][]byte
	listed  []storage.ObjectInfo
}

func (f *fakeClient) Put(_ context.Context, _, key string, reader io.Reader, _ int64, _ string) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeClient) Get(_ context.Context, _, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeClient) Stat(_ context.Context, _, key string) (storage.ObjectInfo, error) {
	data, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeClient) Delete(context.Context, string, string) error {
	return nil
}

func (f *fakeClient) List(context.Context, string, string) ([]storage.ObjectInfo, error) {
	return f.listed, nil
}

func TestStoreAppliesPrefixOnPut(t *testing.T) {
	fake := &fakeClient{}
	store, err := NewWithClient("datasets", "talkdata", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	if _, err := store.Put(context.Background(), "dc_order_lines.parquet", bytes.NewReader([]byte("x")), 1, storage.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := fake.objects["talkdata/dc_order_lines.parquet"]; !ok {
		t.Fatalf("objects = %v", fake.objects)
	}
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	store, err := NewWithClient("datasets", "", &fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "../secrets"); err == nil {
		t.Fatal("expected error for traversal key")
	}
}

func TestStoreListStripsPrefix(t *testing.T) {
	fake := &fakeClient{listed: []storage.ObjectInfo{{Key: "talkdata/dc_order_lines.parquet", Size: 10}}}
	store, err := NewWithClient("datasets", "talkdata", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	infos, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "dc_order_lines.parquet" {
		t.Fatalf("infos = %+v", infos)
	}
}
