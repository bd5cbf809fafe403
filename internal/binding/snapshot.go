package binding

import "github.com/jackzampolin/pagemark/internal/pagesource"

// Snapshot is the state emitted to the presentation layer after every
// transition. It carries everything the UI needs to redraw: the candidate
// list with resolved flags, the live or committed rectangle, and a status
// line.
type Snapshot struct {
	SessionID  string            `json:"session_id"`
	State      State             `json:"state"`
	PageIndex  int               `json:"page_index"`
	Current    string            `json:"current,omitempty"` // selected asset name
	LiveRegion *pagesource.Rect  `json:"live_region,omitempty"`
	References []ReferenceStatus `json:"references"`
	Status     string            `json:"status"`
	Finished   bool              `json:"finished"`
}

// ReferenceStatus is one candidate row in the snapshot.
type ReferenceStatus struct {
	AssetName   string `json:"asset_name"`
	DisplayName string `json:"display_name"`
	PageIndex   int    `json:"page_index"`
	Resolved    bool   `json:"resolved"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		State:     s.state,
		PageIndex: s.pageIndex,
		Status:    s.status,
		Finished:  s.finished,
	}
	if s.current != nil {
		snap.Current = s.current.AssetName
	}
	if s.state == StateDragging || s.state == StateBound {
		live := s.live
		snap.LiveRegion = &live
	}
	for _, ref := range s.refs {
		_, resolved := s.bindings[ref.AssetName]
		snap.References = append(snap.References, ReferenceStatus{
			AssetName:   ref.AssetName,
			DisplayName: ref.DisplayName,
			PageIndex:   ref.PageIndex,
			Resolved:    resolved,
		})
	}
	return snap
}
