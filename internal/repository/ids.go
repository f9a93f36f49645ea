package repository

import (
	"strconv"

	"github.com/iliyamo/classroom-client/internal/model"
)

// parseID converts a model.ID issued by these tables back to its key.
func parseID(id model.ID) (int64, error) {
	return strconv.ParseInt(id.String(), 10, 64)
}
