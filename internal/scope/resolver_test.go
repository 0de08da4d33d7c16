package scope

import (
	"reflect"
	"testing"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

func cellDU(node, ssb string) domain.Record {
	return domain.NewRecord(map[string]any{"NodeId": node, "ssbFrequency": ssb})
}

func testResolver() Resolver {
	return Resolver{
		Table: "NRCellDU",
		Field: "ssbFrequency",
		Band:  freq.Band{Low: 646600, High: 660000},
	}
}

func TestResolveClassifiesNodesByIntersection(t *testing.T) {
	store := domain.NewTableStore()
	store.Put(domain.NewTable("NRCellDU", []domain.Record{
		cellDU("PRE_NODE", "648672"),
		cellDU("POST_NODE", "647328"),
		cellDU("MIXED_NODE", "648672"),
		cellDU("MIXED_NODE", "647328"),
		cellDU("ODD_NODE", "650004"),
	}))

	s := testResolver().Resolve(store, []string{"648672"}, []string{"647328"})

	cases := map[string]domain.NodeStage{
		"PRE_NODE":   domain.StagePre,
		"POST_NODE":  domain.StagePost,
		"MIXED_NODE": domain.StageMixed,
		"ODD_NODE":   domain.StageUnknown,
	}
	for node, want := range cases {
		if got := s.Stage(node); got != want {
			t.Errorf("stage of %s = %v, want %v", node, got, want)
		}
	}
	if got := s.Nodes(domain.StagePost); !reflect.DeepEqual(got, []string{"POST_NODE"}) {
		t.Fatalf("post nodes = %v", got)
	}
}

func TestResolveIgnoresOutOfBandCarriers(t *testing.T) {
	store := domain.NewTableStore()
	store.Put(domain.NewTable("NRCellDU", []domain.Record{
		cellDU("NODE", "174970"),
	}))

	s := testResolver().Resolve(store, []string{"174970"}, nil)
	if got := s.Stage("NODE"); got != domain.StageUnknown {
		t.Fatalf("out-of-band value classified as %v, want Unknown", got)
	}
}

func TestResolveDegradesWhenPrimaryTableMissing(t *testing.T) {
	store := domain.NewTableStore()

	s := testResolver().Resolve(store, []string{"648672"}, []string{"647328"})
	if s.Len() != 0 {
		t.Fatalf("expected empty scope, got %d nodes", s.Len())
	}
	if got := s.Stage("ANY"); got != domain.StageUnknown {
		t.Fatalf("unknown node classified as %v", got)
	}
}

func TestResolveDegradesWhenFieldMissing(t *testing.T) {
	store := domain.NewTableStore()
	store.Put(domain.NewTable("NRCellDU", []domain.Record{
		domain.NewRecord(map[string]any{"NodeId": "NODE"}),
	}))

	s := testResolver().Resolve(store, []string{"648672"}, []string{"647328"})
	if s.Len() != 0 {
		t.Fatalf("expected degraded scope when the field is absent")
	}
}

func TestLeadingIDsSkipsNonNumericNames(t *testing.T) {
	got := LeadingIDs([]string{"430090_A", "431200", "NONAME"})
	want := map[string]struct{}{"430090": {}, "431200": {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LeadingIDs = %v, want %v", got, want)
	}
}
