package queries

import (
	"context"
	"testing"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

type stubService struct {
	snapshots int
	tables    int
	records   int
	lastID    string
}

func (s *stubService) Snapshot(context.Context, dataview.ViewerContext, string) (dataview.Snapshot, error) {
	s.snapshots++
	return dataview.Snapshot{Status: dataview.StatusReady}, nil
}

func (s *stubService) Table(context.Context, dataview.ViewerContext, string) (dataview.TablePayload, error) {
	s.tables++
	return dataview.TablePayload{Resource: "orders"}, nil
}

func (s *stubService) Record(_ context.Context, _ dataview.ViewerContext, _ string, id string) (dataview.Record, error) {
	s.records++
	s.lastID = id
	return dataview.Record{"id": id}, nil
}

func TestSnapshotQuery(t *testing.T) {
	service := &stubService{}
	snap, err := NewSnapshotQuery(service).Query(context.Background(), SnapshotInput{Resource: "orders"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.snapshots != 1 || snap.Status != dataview.StatusReady {
		t.Fatalf("unexpected result %#v (calls=%d)", snap, service.snapshots)
	}
}

func TestTableQuery(t *testing.T) {
	service := &stubService{}
	payload, err := NewTableQuery(service).Query(context.Background(), SnapshotInput{Resource: "orders"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.tables != 1 || payload.Resource != "orders" {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestRecordQuery(t *testing.T) {
	service := &stubService{}
	record, err := NewRecordQuery(service).Query(context.Background(), RecordInput{Resource: "orders", ID: "o-7"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.lastID != "o-7" || record["id"] != "o-7" {
		t.Fatalf("unexpected record %#v", record)
	}
}

func TestResourcesQuery(t *testing.T) {
	service := dataview.NewService(dataview.Options{})
	resources, err := NewResourcesQuery(service).Query(context.Background(), dataview.ViewerContext{Roles: []string{"seller"}})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected seller to see 2 resources, got %d", len(resources))
	}
}
