package testutil

import (
	"fmt"

	"go.uber.org/mock/gomock"

	"github.com/mcoot/lanterngame/internal/model"
)

type eventMatcher struct {
	kind   model.ChangeKind
	entity model.Entity
}

// EventOf matches a model.Event by change kind and entity
func EventOf(kind model.ChangeKind, entity model.Entity) gomock.Matcher {
	return eventMatcher{kind: kind, entity: entity}
}

func (m eventMatcher) Matches(x any) bool {
	event, ok := x.(model.Event)
	if !ok {
		return false
	}
	return event.Kind == m.kind && event.Entity == m.entity
}

func (m eventMatcher) String() string {
	return fmt.Sprintf("is a %s %s event", m.kind, m.entity)
}
