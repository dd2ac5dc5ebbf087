package query

import (
	"testing"

	"civictracker/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func sample() []models.Complaint {
	return []models.Complaint{
		{ID: 1, Description: "Pothole on Main St", Location: "Main Street", Status: models.StatusPending, Category: models.CategoryInfrastructure, Department: models.DepartmentRoadsTransport},
		{ID: 12, Description: "No water since Monday", Location: "Oak Avenue", Status: models.StatusCompleted, Category: models.CategoryUtilities, Department: models.DepartmentWaterSupply},
		{ID: 23, Description: "Overflowing bins", Location: "Market Square", Status: models.StatusPending, Category: models.CategoryEnvironmental, Department: models.DepartmentSanitation},
		{ID: 31, Description: "Broken streetlight", Location: "main street 5", Status: models.StatusInProcess, Category: models.CategorySafety, Department: models.DepartmentElectricity},
	}
}

func ids(cs []models.Complaint) []uint {
	out := make([]uint, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFilter_AllSentinelReturnsEverythingInOrder(t *testing.T) {
	in := sample()
	got := Filter(in, Predicate{Status: "all", Category: "all", Department: "all"})
	assert.Equal(t, in, got)
}

func TestFilter_EmptyPredicate(t *testing.T) {
	in := sample()
	assert.Equal(t, in, Filter(in, Predicate{}))
}

func TestFilter_SearchText(t *testing.T) {
	one := []models.Complaint{{ID: 1, Description: "Pothole on Main St"}}

	assert.Equal(t, []uint{1}, ids(Filter(one, Predicate{SearchText: "pothole"})))

	none := Filter(one, Predicate{SearchText: "xyz"})
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFilter_SearchFields(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []uint
	}{
		{"description case-insensitive", "WATER", []uint{12}},
		{"location", "market", []uint{23}},
		{"location matches several", "main street", []uint{1, 31}},
		{"stringified id", "3", []uint{23, 31}},
		{"trailing space is significant", "Main St ", []uint{}},
		{"inner space", "on main", []uint{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), Predicate{SearchText: tt.search})))
		})
	}
}

func TestFilter_WhitespaceSearchIsLiteral(t *testing.T) {
	in := []models.Complaint{
		{ID: 5, Description: "Graffiti", Location: "Park"},
		{ID: 6, Description: "Loose tiles", Location: "Plaza"},
	}

	assert.Equal(t, []uint{6}, ids(Filter(in, Predicate{SearchText: " "})))
	assert.Equal(t, []uint{5, 6}, ids(Filter(in, Predicate{SearchText: ""})))
}

func TestFilter_ExactFieldsCombineWithAnd(t *testing.T) {
	in := sample()

	assert.Equal(t, []uint{1, 23}, ids(Filter(in, Predicate{Status: "pending"})))
	assert.Equal(t, []uint{23}, ids(Filter(in, Predicate{Status: "pending", Category: "environmental"})))
	assert.Equal(t, []uint{31}, ids(Filter(in, Predicate{Department: "electricity", SearchText: "street"})))
	assert.Empty(t, Filter(in, Predicate{Status: "completed", Department: "sanitation"}))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	in := sample()
	snapshot := sample()

	out := Filter(in, Predicate{Status: "pending"})
	out[0].Description = "changed"

	assert.Equal(t, snapshot, in)
}

func TestFilter_NilInput(t *testing.T) {
	out := Filter(nil, Predicate{SearchText: "x"})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestPredicate_Matches(t *testing.T) {
	c := sample()[1]
	assert.True(t, Predicate{Category: "utilities"}.Matches(c))
	assert.False(t, Predicate{Category: "safety"}.Matches(c))
}
