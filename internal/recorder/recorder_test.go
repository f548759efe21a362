package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clubarchive/ingestion/internal/models"
)

func TestOutcome_Status_Success(t *testing.T) {
	o := Outcome{MatchesFetched: 3, MatchesNew: 3}
	assert.Equal(t, models.RunStatusSuccess, o.Status())
}

func TestOutcome_Status_Failed(t *testing.T) {
	o := Outcome{AnyClubErrored: true}
	assert.Equal(t, models.RunStatusFailed, o.Status())
}

func TestOutcome_Status_Partial(t *testing.T) {
	o := Outcome{MatchesFetched: 2, MatchesNew: 2, AnyClubErrored: true}
	assert.Equal(t, models.RunStatusPartial, o.Status())
}

func TestOutcome_Status_SuccessWithZeroMatches(t *testing.T) {
	o := Outcome{}
	assert.Equal(t, models.RunStatusSuccess, o.Status())
}
