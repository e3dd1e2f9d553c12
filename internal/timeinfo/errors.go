package timeinfo

import (
	"fmt"

	"github.com/viewtouch/posk/internal/poserr"
)

var errOvertimeBounds = fmt.Errorf("%w: overtime week", poserr.ErrState)
