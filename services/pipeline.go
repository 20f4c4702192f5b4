package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yashrajoria/lezzetli-admin/models"
)

// DefaultPageSize is the order listing page size when none is configured.
const DefaultPageSize = 5

// Stage names a step of the listing pipeline. It is carried on errors so a
// failure can be traced to where it happened.
type Stage string

const (
	StageScoping    Stage = "scoping"
	StageFetching   Stage = "fetching"
	StageResolving  Stage = "resolving"
	StageAssembling Stage = "assembling"
	StageSorting    Stage = "sorting"
	StagePaginating Stage = "paginating"
)

// StageError is a pipeline failure tagged with its stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// ParsePage reads a page query value. Missing, unparsable and
// non-positive values all mean the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate computes the metadata for one page over total records and the
// half-open slice bounds of that page. A page past the end yields an empty
// range with correct metadata.
func Paginate(total, page, size int) (models.Pagination, int, int) {
	if size < 1 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	p := models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
	}
	// Compare page counts first so a huge page cannot overflow the offset
	start := total
	if page-1 <= total/size {
		start = (page - 1) * size
	}
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return p, start, end
}

// sortNewestFirst orders items by descending timestamp. The sort is stable,
// so equal timestamps keep their fetch order; invalid timestamps count as
// the epoch and end up last.
func sortNewestFirst[T any](items []T, ts func(T) models.Timestamp) {
	sort.SliceStable(items, func(i, j int) bool {
		return ts(items[i]).After(ts(items[j]))
	})
}
