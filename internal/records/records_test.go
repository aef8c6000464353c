package records

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/yoockh/dojoportal/internal/dependencies/mocks"
	"github.com/yoockh/dojoportal/internal/logger"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/repositories/memory"
	"github.com/yoockh/dojoportal/internal/utils"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"10":    10,
		" 5.5 ": 5.5,
		"-3":    -3,
		"":      0,
		"bad":   0,
		"NaN":   0,
		"Inf":   0,
		"1e3":   1000,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAmount(in), "input %q", in)
	}
}

func TestTotal(t *testing.T) {
	var items []models.FundRecord
	for _, raw := range []string{"10", "bad", "5.5", ""} {
		items = append(items, models.FundRecord{Amount: ParseAmount(raw)})
	}
	assert.Equal(t, 15.5, Total(items))

	items = append(items, models.FundRecord{Amount: math.NaN()})
	assert.Equal(t, 15.5, Total(items))
	assert.Zero(t, Total(nil))
}

func TestParseAge(t *testing.T) {
	if assert.NotNil(t, ParseAge(" 17 ")) {
		assert.Equal(t, 17, *ParseAge(" 17 "))
	}
	assert.Nil(t, ParseAge(""))
	assert.Nil(t, ParseAge("seventeen"))
	assert.Nil(t, ParseAge("17.5"))
}

type FundsSuite struct {
	suite.Suite
	repo   *memory.RecordRepo[models.FundRecord]
	bus    *realtime.MemoryBus
	clock  *mocks.MockClock
	svc    Service[models.FundRecord, models.FundDraft]
	editor *Editor[models.FundRecord, models.FundDraft]
	ctx    context.Context
}

func TestFundsSuite(t *testing.T) {
	suite.Run(t, new(FundsSuite))
}

func (s *FundsSuite) SetupTest() {
	s.repo = memory.NewRecordRepo[models.FundRecord]()
	s.bus = realtime.NewMemoryBus()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.svc = NewService(FundKind, s.repo, s.bus, s.clock, logger.Discard())
	s.editor = NewEditor(s.svc, FundKind)
	s.ctx = context.Background()
}

func (s *FundsSuite) TestCreateStampsBothTimestamps() {
	rec, err := s.svc.Create(s.ctx, models.FundDraft{Title: " Tournament fees ", Amount: "120.50"})
	s.Require().NoError(err)

	s.NotEmpty(rec.ID)
	s.Equal("Tournament fees", rec.Title)
	s.Equal(120.5, rec.Amount)
	s.Equal(s.clock.Now(), rec.CreatedAt)
	s.Equal(s.clock.Now(), rec.UpdatedAt)
}

func (s *FundsSuite) TestBlankTitleIssuesNoWrite() {
	_, err := s.svc.Create(s.ctx, models.FundDraft{Title: "  ", Amount: "10"})
	s.Require().Error(err)
	s.True(utils.IsCode(err, utils.CodeInvalidArgument))
	s.Zero(s.repo.Writes)
}

func (s *FundsSuite) TestUpdatePreservesCreatedAt() {
	rec, err := s.svc.Create(s.ctx, models.FundDraft{Title: "Mats", Amount: "300"})
	s.Require().NoError(err)
	created := rec.CreatedAt

	s.clock.Advance(time.Hour)
	s.Require().NoError(s.svc.Update(s.ctx, rec.ID, models.FundDraft{Title: "Mats", Amount: "oops"}))

	got, ok := s.repo.Get(rec.ID)
	s.Require().True(ok)
	s.Equal(created, got.CreatedAt)
	s.Equal(s.clock.Now(), got.UpdatedAt)
	s.Zero(got.Amount)
}

func (s *FundsSuite) TestUpdateMissingRecord() {
	err := s.svc.Update(s.ctx, "nope", models.FundDraft{Title: "x"})
	s.True(utils.IsCode(err, utils.CodeNotFound))
}

func (s *FundsSuite) TestRemoteFailure() {
	s.repo.Err = errors.New("pg down")

	_, err := s.svc.Create(s.ctx, models.FundDraft{Title: "x"})
	s.True(utils.IsCode(err, utils.CodeUnavailable))
}

func (s *FundsSuite) TestEditorSubmitCreatesAndResets() {
	s.editor.SetDraft(models.FundDraft{Title: "Belts", Amount: "45"})
	s.Require().NoError(s.editor.Submit(s.ctx))

	st := s.editor.State()
	s.Equal(models.FundDraft{}, st.Draft)
	s.False(st.Busy)
	s.Equal(1, s.repo.Writes)
}

func (s *FundsSuite) TestEditorSubmitValidationKeepsDraft() {
	s.editor.SetDraft(models.FundDraft{Title: "  ", Amount: "45"})

	err := s.editor.Submit(s.ctx)
	s.Require().Error(err)

	st := s.editor.State()
	s.Equal(models.FormValue("45"), st.Draft.Amount)
	s.Equal("title is required", st.Error)
	s.False(st.Busy)
	s.Zero(s.repo.Writes)
}

func (s *FundsSuite) TestEditorEditThenSubmitUpdates() {
	rec, err := s.svc.Create(s.ctx, models.FundDraft{Title: "Gis", Amount: "80"})
	s.Require().NoError(err)

	s.editor.Edit(*rec)
	st := s.editor.State()
	s.Equal(rec.ID, st.EditingID)
	s.Equal(models.FundDraft{Title: "Gis", Amount: "80"}, st.Draft)

	s.editor.SetDraft(models.FundDraft{Title: "Gis", Amount: "95"})
	s.Require().NoError(s.editor.Submit(s.ctx))

	got, _ := s.repo.Get(rec.ID)
	s.Equal(95.0, got.Amount)
	s.Empty(s.editor.State().EditingID)
}

func (s *FundsSuite) TestRemovingEditedRecordClearsDraft() {
	rec, err := s.svc.Create(s.ctx, models.FundDraft{Title: "Gis", Amount: "80"})
	s.Require().NoError(err)
	s.editor.Edit(*rec)

	s.Require().NoError(s.editor.Remove(s.ctx, *rec))

	st := s.editor.State()
	s.Empty(st.EditingID)
	s.Equal(models.FundDraft{}, st.Draft)
}

func (s *FundsSuite) TestRemovingOtherRecordKeepsDraft() {
	a, err := s.svc.Create(s.ctx, models.FundDraft{Title: "A"})
	s.Require().NoError(err)
	b, err := s.svc.Create(s.ctx, models.FundDraft{Title: "B"})
	s.Require().NoError(err)
	s.editor.Edit(*a)

	s.Require().NoError(s.editor.Remove(s.ctx, *b))
	s.Equal(a.ID, s.editor.State().EditingID)
}

func (s *FundsSuite) TestRemoveWithoutIDIsNoop() {
	s.Require().NoError(s.editor.Remove(s.ctx, models.FundRecord{Title: "ghost"}))
	s.Zero(s.repo.Writes)
}

func (s *FundsSuite) TestSyncMirrorsCollection() {
	cancel, err := s.editor.Sync(s.ctx, s.bus, logger.Discard())
	s.Require().NoError(err)
	defer cancel()

	_, err = s.svc.Create(s.ctx, models.FundDraft{Title: "A", Amount: "10"})
	s.Require().NoError(err)
	s.clock.Advance(time.Second)
	_, err = s.svc.Create(s.ctx, models.FundDraft{Title: "B", Amount: "5.5"})
	s.Require().NoError(err)

	s.Eventually(func() bool { return len(s.editor.State().Items) == 2 }, time.Second, 5*time.Millisecond)
	items := s.editor.State().Items
	s.Equal("B", items[0].Title)
	s.Equal(15.5, Total(items))
}

func TestPlayerKind(t *testing.T) {
	repo := memory.NewRecordRepo[models.PlayerRecord]()
	clk := mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(PlayerKind, repo, realtime.NewMemoryBus(), clk, logger.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.PlayerDraft{Name: " ", Age: "12"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Zero(t, repo.Writes)

	rec, err := svc.Create(ctx, models.PlayerDraft{Name: " Aiko ", Belt: "brown", Age: "x"})
	if assert.NoError(t, err) {
		assert.Equal(t, "Aiko", rec.Name)
		assert.Nil(t, rec.Age)
	}

	editor := NewEditor(svc, PlayerKind)
	age := 14
	editor.Edit(models.PlayerRecord{ID: rec.ID, Name: "Aiko", Age: &age})
	assert.Equal(t, models.FormValue("14"), editor.State().Draft.Age)
}
