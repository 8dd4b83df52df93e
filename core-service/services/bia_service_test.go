package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/permission"
)

func float(v float64) *float64 { return &v }

type biaFixture struct {
	db         *gorm.DB
	categories *BIACategoryService
	criteria   *BIAImpactCriterionService
	frameworks *BIAFrameworkService
	timeframes *BIATimeframeService
	a, b       tenant
}

func newBIAFixture(t *testing.T) biaFixture {
	t.Helper()
	db := dbtest.New(t)
	log := dbtest.Logger()
	return biaFixture{
		db:         db,
		categories: NewBIACategoryService(db, log),
		criteria:   NewBIAImpactCriterionService(db, log),
		frameworks: NewBIAFrameworkService(db, log),
		timeframes: NewBIATimeframeService(db, log),
		a:          newTenant(t, db, "alpha"),
		b:          newTenant(t, db, "beta"),
	}
}

func (f biaFixture) criterion(t *testing.T, actor permission.Principal, name string) *models.BIAImpactCriterion {
	t.Helper()
	category, err := f.categories.Create(context.Background(), actor, BIACategoryCreate{Name: "Category " + name})
	require.NoError(t, err)
	c, err := f.criteria.Create(context.Background(), actor, BIAImpactCriterionCreate{
		BIACategoryID: category.ID,
		Name:          name,
		RatingType:    models.RatingTypeQualitative,
		Levels: []CriterionLevelInput{
			{LevelName: "Low", Score: 1, SequenceOrder: 1},
			{LevelName: "High", Score: 5, SequenceOrder: 2},
		},
	})
	require.NoError(t, err)
	return c
}

func TestBIACategoryLifecycle(t *testing.T) {
	f := newBIAFixture(t)

	c, err := f.categories.Create(context.Background(), f.a.actor, BIACategoryCreate{Name: "Financial"})
	require.NoError(t, err)
	assert.True(t, c.IsActive)
	assert.Equal(t, f.a.user.ID, *c.CreatedByID)

	_, err = f.categories.Create(context.Background(), f.a.actor, BIACategoryCreate{Name: "Financial"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.categories.Create(context.Background(), f.b.actor, BIACategoryCreate{Name: "Financial"})
	assert.NoError(t, err)

	require.NoError(t, f.categories.Delete(context.Background(), f.a.actor, c.ID))
	got, err := f.categories.Get(context.Background(), f.a.actor, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "delete is a soft delete")

	_, err = f.categories.Get(context.Background(), f.b.actor, c.ID)
	requireNotFound(t, err, "BIA category")
}

func TestBIAImpactCriterionValidation(t *testing.T) {
	f := newBIAFixture(t)
	category, err := f.categories.Create(context.Background(), f.a.actor, BIACategoryCreate{Name: "Operational"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  BIAImpactCriterionCreate
		fields []string
	}{
		{
			name:   "no levels",
			input:  BIAImpactCriterionCreate{BIACategoryID: category.ID, Name: "X", RatingType: "QUALITATIVE"},
			fields: []string{"levels"},
		},
		{
			name: "bad rating type",
			input: BIAImpactCriterionCreate{BIACategoryID: category.ID, Name: "X", RatingType: "FUZZY",
				Levels: []CriterionLevelInput{{LevelName: "L", Score: 1}}},
			fields: []string{"rating_type"},
		},
		{
			name: "quantitative level without bounds",
			input: BIAImpactCriterionCreate{BIACategoryID: category.ID, Name: "X", RatingType: "QUANTITATIVE",
				Levels: []CriterionLevelInput{{LevelName: "L", Score: 1}}},
			fields: []string{"levels[0]"},
		},
		{
			name: "quantitative min above max",
			input: BIAImpactCriterionCreate{BIACategoryID: category.ID, Name: "X", RatingType: "QUANTITATIVE",
				Levels: []CriterionLevelInput{{LevelName: "L", Score: 1, LevelValueMin: float(10), LevelValueMax: float(5)}}},
			fields: []string{"levels[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.criteria.Create(context.Background(), f.a.actor, tt.input)
			verr := requireValidation(t, err)
			for _, field := range tt.fields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestBIAImpactCriterionForeignCategory(t *testing.T) {
	f := newBIAFixture(t)
	foreign, err := f.categories.Create(context.Background(), f.b.actor, BIACategoryCreate{Name: "Theirs"})
	require.NoError(t, err)

	_, err = f.criteria.Create(context.Background(), f.a.actor, BIAImpactCriterionCreate{
		BIACategoryID: foreign.ID,
		Name:          "X",
		RatingType:    models.RatingTypeQualitative,
		Levels:        []CriterionLevelInput{{LevelName: "L", Score: 1}},
	})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(foreign.ID), verr.InvalidIDs)
}

func TestBIAImpactCriterionLevelsReplacedOnUpdate(t *testing.T) {
	f := newBIAFixture(t)
	c := f.criterion(t, f.a.actor, "Reputation")
	require.Len(t, c.Levels, 2)
	assert.Equal(t, "Low", c.Levels[0].LevelName)

	updated, err := f.criteria.Update(context.Background(), f.a.actor, c.ID, BIAImpactCriterionUpdate{Description: strPtr("brand damage")})
	require.NoError(t, err)
	assert.Len(t, updated.Levels, 2, "absent levels are kept")

	levels := []CriterionLevelInput{{LevelName: "Over 1M", Score: 5, SequenceOrder: 1, LevelValueMin: float(1_000_000)}}
	updated, err = f.criteria.Update(context.Background(), f.a.actor, c.ID, BIAImpactCriterionUpdate{
		RatingType: strPtr("quantitative"),
		Levels:     &levels,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RatingTypeQuantitative, updated.RatingType)
	require.Len(t, updated.Levels, 1)
	assert.Equal(t, "Over 1M", updated.Levels[0].LevelName)

	var count int64
	require.NoError(t, f.db.Model(&models.BIAImpactCriterionLevel{}).Where("criterion_id = ?", c.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = f.criteria.Update(context.Background(), f.a.actor, c.ID, BIAImpactCriterionUpdate{RatingType: strPtr("QUALITATIVE")})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "changing rating type needs new levels")
}

func TestBIAFrameworkCreate(t *testing.T) {
	f := newBIAFixture(t)
	c1 := f.criterion(t, f.a.actor, "Financial")
	c2 := f.criterion(t, f.a.actor, "Legal")

	fw, err := f.frameworks.Create(context.Background(), f.a.actor, BIAFrameworkCreate{
		Name:      "Default",
		Threshold: float(3),
		Parameters: []FrameworkParameterInput{
			{CriterionID: c1.ID, Weightage: 60},
			{CriterionID: c2.ID, Weightage: 40},
		},
		RTOs: []FrameworkRTOInput{{DisplayText: "4 hours", ValueInHours: 4}, {DisplayText: "1 day", ValueInHours: 24}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.FormulaWeightedAverage, fw.Formula)
	assert.Len(t, fw.Parameters, 2)
	assert.Len(t, fw.RTOs, 2)
}

func TestBIAFrameworkWeightageRules(t *testing.T) {
	f := newBIAFixture(t)
	c1 := f.criterion(t, f.a.actor, "Financial")
	c2 := f.criterion(t, f.a.actor, "Legal")

	tests := []struct {
		name   string
		params []FrameworkParameterInput
		field  string
	}{
		{"sum below 100", []FrameworkParameterInput{{c1.ID, 50}, {c2.ID, 40}}, "parameters"},
		{"zero weight", []FrameworkParameterInput{{c1.ID, 100}, {c2.ID, 0}}, "parameters[1].weightage"},
		{"over 100", []FrameworkParameterInput{{c1.ID, 120}}, "parameters[0].weightage"},
		{"duplicate criterion", []FrameworkParameterInput{{c1.ID, 50}, {c1.ID, 50}}, "parameters[1].criterion_id"},
		{"empty", nil, "parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.frameworks.Create(context.Background(), f.a.actor, BIAFrameworkCreate{Name: "FW", Parameters: tt.params})
			verr := requireValidation(t, err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	_, err := f.frameworks.Create(context.Background(), f.a.actor, BIAFrameworkCreate{
		Name:       "Rounded",
		Parameters: []FrameworkParameterInput{{c1.ID, 33.333}, {c2.ID, 66.67}},
	})
	assert.NoError(t, err, "sums within 0.01 of 100 are accepted")
}

func TestBIAFrameworkListsEveryUnknownCriterion(t *testing.T) {
	f := newBIAFixture(t)
	own := f.criterion(t, f.a.actor, "Financial")
	foreign := f.criterion(t, f.b.actor, "Theirs")
	unknown := uuid.New()

	_, err := f.frameworks.Create(context.Background(), f.a.actor, BIAFrameworkCreate{
		Name: "FW",
		Parameters: []FrameworkParameterInput{
			{CriterionID: own.ID, Weightage: 40},
			{CriterionID: foreign.ID, Weightage: 30},
			{CriterionID: unknown, Weightage: 30},
		},
	})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(foreign.ID, unknown), verr.InvalidIDs)
}

func TestBIAFrameworkUpdateReplacesChildren(t *testing.T) {
	f := newBIAFixture(t)
	c1 := f.criterion(t, f.a.actor, "Financial")
	c2 := f.criterion(t, f.a.actor, "Legal")

	fw, err := f.frameworks.Create(context.Background(), f.a.actor, BIAFrameworkCreate{
		Name:       "FW",
		Parameters: []FrameworkParameterInput{{c1.ID, 100}},
		RTOs:       []FrameworkRTOInput{{"4 hours", 4}},
	})
	require.NoError(t, err)

	fw, err = f.frameworks.Update(context.Background(), f.a.actor, fw.ID, BIAFrameworkUpdate{Description: strPtr("v2")})
	require.NoError(t, err)
	assert.Len(t, fw.Parameters, 1)
	assert.Len(t, fw.RTOs, 1)

	params := []FrameworkParameterInput{{c1.ID, 50}, {c2.ID, 50}}
	rtos := []FrameworkRTOInput{}
	fw, err = f.frameworks.Update(context.Background(), f.a.actor, fw.ID, BIAFrameworkUpdate{Parameters: &params, RTOs: &rtos})
	require.NoError(t, err)
	assert.Len(t, fw.Parameters, 2)
	assert.Empty(t, fw.RTOs)

	_, err = f.criteria.Get(context.Background(), f.a.actor, c1.ID)
	require.NoError(t, err)
	err = f.criteria.Delete(context.Background(), f.a.actor, c1.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "criteria weighted in a framework cannot be deleted")

	require.NoError(t, f.frameworks.Delete(context.Background(), f.a.actor, fw.ID))
	var count int64
	require.NoError(t, f.db.Model(&models.BIAFrameworkParameter{}).Where("framework_id = ?", fw.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, f.criteria.Delete(context.Background(), f.a.actor, c1.ID))
}

func TestBIATimeframeOrdering(t *testing.T) {
	f := newBIAFixture(t)

	for i, name := range []string{"1 day", "4 hours", "1 week"} {
		order := []int{2, 1, 3}[i]
		_, err := f.timeframes.Create(context.Background(), f.a.actor, BIATimeframeCreate{TimeframeName: name, SequenceOrder: order})
		require.NoError(t, err)
	}

	_, err := f.timeframes.Create(context.Background(), f.a.actor, BIATimeframeCreate{TimeframeName: "1 day"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	page, err := f.timeframes.List(context.Background(), f.a.actor, listByDefault())
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "4 hours", page.Items[0].TimeframeName)
	assert.Equal(t, "1 week", page.Items[2].TimeframeName)
}
