package domain

// Target classifies where a neighbor reference points in the retune journey.
// The values match the labels used in the comparison reports.
type Target string

const (
	TargetToPre   Target = "SSB-Pre"
	TargetToPost  Target = "SSB-Post"
	TargetUnknown Target = "Unknown"
)

// DeltaEntry is a relation present in only one snapshot. Row is the full
// source row (POST side for new entries, PRE side for missing ones) so the
// render layer can explain the classification.
type DeltaEntry struct {
	Key      Key
	NodeID   string
	Row      Record
	FreqPre  string
	FreqPost string
}

// Discrepancy is a relation present in both snapshots with at least one
// audited difference. ParamDiff and FreqDiff are independent flags; a single
// relation can carry both.
type Discrepancy struct {
	Key        Key
	NodeID     string
	PreRow     Record
	PostRow    Record
	ParamDiff  bool
	DiffFields []string
	FreqDiff   bool
	FreqPre    string
	FreqPost   string
	Target     Target
}

// RelationDelta is the output of one PRE/POST relation comparison.
type RelationDelta struct {
	TableName      string
	KeyFields      []string
	New            []DeltaEntry
	Missing        []DeltaEntry
	Discrepancies  []Discrepancy
	DuplicateKeys  []Key
	UnchangedCount int
}

// ParamDiscrepancies returns the entries flagged with a parameter difference.
func (d RelationDelta) ParamDiscrepancies() []Discrepancy {
	var out []Discrepancy
	for _, disc := range d.Discrepancies {
		if disc.ParamDiff {
			out = append(out, disc)
		}
	}
	return out
}

// FreqDiscrepancies returns the entries flagged with a frequency difference.
func (d RelationDelta) FreqDiscrepancies() []Discrepancy {
	var out []Discrepancy
	for _, disc := range d.Discrepancies {
		if disc.FreqDiff {
			out = append(out, disc)
		}
	}
	return out
}
