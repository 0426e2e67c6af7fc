package biz

import (
	"time"

	"dday/internal/conf"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewLookupUseCase, NewDDayUseCase, NewLocation)

// NewLocation is the calendar used to decide what "today" is.
func NewLocation(c *conf.App) *time.Location {
	return c.Location()
}
