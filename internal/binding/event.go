package binding

import "fmt"

// EventType enumerates the selection events emitted by the presentation
// layer.
type EventType string

const (
	EventSelect         EventType = "select"
	EventNavigate       EventType = "navigate"
	EventPointerDown    EventType = "pointer_down"
	EventPointerMove    EventType = "pointer_move"
	EventPointerRelease EventType = "pointer_release"
	EventCancel         EventType = "cancel"
	EventFinish         EventType = "finish"
)

// Event is one presentation-layer input. Fields are used depending on Type:
// AssetName for select, Point for pointer events, PageIndex and Transform
// for navigate.
type Event struct {
	Type      EventType  `json:"type"`
	AssetName string     `json:"asset_name,omitempty"`
	Point     Point      `json:"point"`
	PageIndex int        `json:"page_index,omitempty"`
	Transform *Transform `json:"transform,omitempty"`
}

// Apply dispatches an event to the session. Recoverable rejections
// (unknown reference, degenerate region, select during drag) come back as
// errors while the session stays consistent; the caller re-emits a snapshot
// either way.
func (s *Session) Apply(ev Event) error {
	switch ev.Type {
	case EventSelect:
		return s.Select(ev.AssetName)
	case EventNavigate:
		t := s.transform
		if ev.Transform != nil {
			t = *ev.Transform
		}
		return s.Navigate(ev.PageIndex, t)
	case EventPointerDown:
		return s.PointerDown(ev.Point)
	case EventPointerMove:
		return s.PointerMove(ev.Point)
	case EventPointerRelease:
		return s.PointerRelease(ev.Point)
	case EventCancel:
		return s.Cancel()
	case EventFinish:
		s.Finish()
		return nil
	default:
		return fmt.Errorf("unknown event type: %s", ev.Type)
	}
}
