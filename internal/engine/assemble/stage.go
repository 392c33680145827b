package assemble

// Stage is the progress of one extraction run. A run enters every stage
// exactly once, in declaration order.
type Stage int

const (
	StageEmpty Stage = iota
	StagePrimaryExtracted
	StageFallbackApplied
	StageDetailMerged
	StageFinalized
)

var stageNames = [...]string{
	StageEmpty:            "empty",
	StagePrimaryExtracted: "primary_extracted",
	StageFallbackApplied:  "fallback_applied",
	StageDetailMerged:     "detail_merged",
	StageFinalized:        "finalized",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
