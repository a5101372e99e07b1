package domain

// SnapshotVersion is embedded in every persisted snapshot. It is never validated on load.
const SnapshotVersion = "2.0.0"

// Snapshot is the persisted user data blob, read and written wholesale
type Snapshot struct {
	Activities      []Activity         `json:"activities"`
	Goals           []*Goal            `json:"goals"`
	EngagementState EngagementState    `json:"engagementState"`
	TodaysProgress  map[string]float64 `json:"todaysProgress"`
	Version         string             `json:"version"`
}

// NewSnapshot returns an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Activities:     []Activity{},
		Goals:          []*Goal{},
		TodaysProgress: map[string]float64{},
		Version:        SnapshotVersion,
	}
}

// Normalize replaces nil collections left by older or partial blobs
func (s *Snapshot) Normalize() {
	if s.Activities == nil {
		s.Activities = []Activity{}
	}
	if s.Goals == nil {
		s.Goals = []*Goal{}
	}
	if s.TodaysProgress == nil {
		s.TodaysProgress = map[string]float64{}
	}
	if s.EngagementState.FavoriteCategories == nil {
		s.EngagementState.FavoriteCategories = []Category{}
	}
	for _, g := range s.Goals {
		if g.CompletedDays == nil {
			g.CompletedDays = []string{}
		}
	}
	if s.Version == "" {
		s.Version = SnapshotVersion
	}
}
