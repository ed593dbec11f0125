package shipping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRateRepository is a mock implementation of RateRepository
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindRate(ctx context.Context, region string, subRegion *string) (*shipping.Rate, error) {
	var key string
	if subRegion != nil {
		key = *subRegion
	}
	args := m.Called(ctx, region, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Rate), args.Error(1)
}

func (m *MockRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Rate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Rate), args.Error(1)
}

func (m *MockRateRepository) List(ctx context.Context) ([]shipping.Rate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.Rate), args.Error(1)
}

func (m *MockRateRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateRepository) Save(ctx context.Context, rate *shipping.Rate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubRegionRepository is a mock implementation of SubRegionRepository
type MockSubRegionRepository struct {
	mock.Mock
}

func (m *MockSubRegionRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.SubRegion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.SubRegion), args.Error(1)
}

func (m *MockSubRegionRepository) ListByRegion(ctx context.Context, region string) ([]shipping.SubRegion, error) {
	args := m.Called(ctx, region)
	return args.Get(0).([]shipping.SubRegion), args.Error(1)
}

func (m *MockSubRegionRepository) List(ctx context.Context) ([]shipping.SubRegion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]shipping.SubRegion), args.Error(1)
}

func (m *MockSubRegionRepository) Save(ctx context.Context, subRegion *shipping.SubRegion) error {
	args := m.Called(ctx, subRegion)
	return args.Error(0)
}

func (m *MockSubRegionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const algiers = "الجزائر"

func newService() (*ShippingService, *MockRateRepository, *MockSubRegionRepository) {
	rates := new(MockRateRepository)
	subRegions := new(MockSubRegionRepository)
	return NewShippingService(rates, subRegions), rates, subRegions
}

func mustRate(t *testing.T, region, subRegion string, price int64) *shipping.Rate {
	t.Helper()
	r, err := shipping.NewRate(region, shared.OptionalString(subRegion), price, "24h")
	require.NoError(t, err)
	return r
}

func TestShippingService_Quote(t *testing.T) {
	tests := []struct {
		name       string
		subRegion  string
		exact      *shipping.Rate
		fallback   *shipping.Rate
		wantPrice  int64
		wantSource string
	}{
		{"exact sub-region rate", "باب الوادي", mustRate(t, algiers, "باب الوادي", 400), mustRate(t, algiers, "", 600), 400, "exact"},
		{"region default", "بئر مراد رايس", nil, mustRate(t, algiers, "", 600), 600, "default"},
		{"no rate at all", "", nil, nil, 0, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, rates, _ := newService()
			ctx := context.Background()

			if tt.subRegion != "" {
				if tt.exact != nil {
					rates.On("FindRate", ctx, algiers, tt.subRegion).Return(tt.exact, nil)
				} else {
					rates.On("FindRate", ctx, algiers, tt.subRegion).Return(nil, shared.ErrNotFound)
				}
			}
			if tt.fallback != nil {
				rates.On("FindRate", ctx, algiers, "").Return(tt.fallback, nil).Maybe()
			} else {
				rates.On("FindRate", ctx, algiers, "").Return(nil, shared.ErrNotFound).Maybe()
			}

			q, err := service.Quote(ctx, QuoteRequest{Region: " " + algiers + " ", SubRegion: tt.subRegion})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, q.Price)
			assert.Equal(t, tt.wantSource, q.Source)
			assert.Equal(t, algiers, q.Region)
		})
	}
}

func TestShippingService_Regions(t *testing.T) {
	service, _, _ := newService()

	regions, err := service.Regions()
	require.NoError(t, err)
	require.Len(t, regions, 58)
	assert.Equal(t, 1, regions[0].Code)
	assert.Equal(t, 16, regions[15].Code)
	assert.Equal(t, algiers, regions[15].Name)
}

func TestShippingService_SubRegions(t *testing.T) {
	service, _, subRegions := newService()
	ctx := context.Background()

	sr, err := shipping.NewSubRegion(algiers, "الحراش")
	require.NoError(t, err)
	subRegions.On("ListByRegion", ctx, algiers).Return([]shipping.SubRegion{*sr}, nil)

	out, err := service.SubRegions(ctx, algiers)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "الحراش", out[0].Name)

	empty, err := service.SubRegions(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
	subRegions.AssertNumberOfCalls(t, "ListByRegion", 1)
}

func TestShippingService_AddRate_Creates(t *testing.T) {
	service, rates, _ := newService()
	ctx := context.Background()

	rates.On("FindRate", ctx, algiers, "").Return(nil, shared.ErrNotFound)
	rates.On("Save", ctx, mock.MatchedBy(func(r *shipping.Rate) bool {
		return r.Region == algiers && r.IsDefault() && r.Price == 600
	})).Return(nil)

	resp, err := service.AddRate(ctx, RateForm{Region: algiers, Price: "600", ETA: "24-72 ساعة"})
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	assert.Equal(t, int64(600), resp.Price)
	rates.AssertExpectations(t)
}

func TestShippingService_AddRate_UpdatesExistingPair(t *testing.T) {
	service, rates, _ := newService()
	ctx := context.Background()

	existing := mustRate(t, algiers, "الحراش", 500)
	rates.On("FindRate", ctx, algiers, "الحراش").Return(existing, nil)
	rates.On("Save", ctx, existing).Return(nil)

	resp, err := service.AddRate(ctx, RateForm{Region: algiers, SubRegion: " الحراش ", Price: "450", ETA: "48h"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID, "same row is repriced")
	assert.Equal(t, int64(450), resp.Price)
	assert.Equal(t, "48h", resp.ETA)
}

func TestShippingService_AddRate_RetriesAfterInsertRace(t *testing.T) {
	service, rates, _ := newService()
	ctx := context.Background()

	winner := mustRate(t, algiers, "", 700)
	rates.On("FindRate", ctx, algiers, "").Return(nil, shared.ErrNotFound).Once()
	rates.On("Save", ctx, mock.MatchedBy(func(r *shipping.Rate) bool { return r.ID != winner.ID })).
		Return(shared.ErrAlreadyExists).Once()
	rates.On("FindRate", ctx, algiers, "").Return(winner, nil).Once()
	rates.On("Save", ctx, winner).Return(nil).Once()

	resp, err := service.AddRate(ctx, RateForm{Region: algiers, Price: "650"})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, resp.ID)
	assert.Equal(t, int64(650), resp.Price)
	rates.AssertExpectations(t)
}

func TestShippingService_AddRate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		form  RateForm
		check func(t *testing.T, err error)
	}{
		{"blank region", RateForm{Region: " ", Price: "600"}, func(t *testing.T, err error) {
			var v *shared.ValidationError
			require.ErrorAs(t, err, &v)
			assert.True(t, v.HasField("region"))
		}},
		{"unknown region", RateForm{Region: "Atlantis", Price: "600"}, func(t *testing.T, err error) {
			var d *shared.DomainError
			require.ErrorAs(t, err, &d)
			assert.Equal(t, "INVALID_REGION", d.Code)
		}},
		{"malformed price", RateForm{Region: algiers, Price: "6OO"}, func(t *testing.T, err error) {
			var p *shared.ParseError
			require.ErrorAs(t, err, &p)
			assert.Equal(t, "price", p.Field)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, rates, _ := newService()
			_, err := service.AddRate(context.Background(), tt.form)
			tt.check(t, err)
			rates.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestShippingService_ListRates(t *testing.T) {
	service, rates, _ := newService()
	ctx := context.Background()

	rates.On("List", ctx).Return([]shipping.Rate{*mustRate(t, algiers, "", 600), *mustRate(t, algiers, "الحراش", 500)}, nil)

	out, err := service.ListRates(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsDefault)
	assert.False(t, out[1].IsDefault)
}

func TestShippingService_DeleteRate(t *testing.T) {
	service, rates, _ := newService()
	ctx := context.Background()

	id := uuid.New()
	rates.On("Delete", ctx, id).Return(shared.ErrNotFound)
	assert.ErrorIs(t, service.DeleteRate(ctx, id), shared.ErrNotFound)
}

func TestShippingService_AddSubRegion(t *testing.T) {
	service, _, subRegions := newService()
	ctx := context.Background()

	subRegions.On("Save", ctx, mock.AnythingOfType("*shipping.SubRegion")).Return(nil).Once()
	resp, err := service.AddSubRegion(ctx, SubRegionForm{Region: algiers, Name: " الحراش "})
	require.NoError(t, err)
	assert.Equal(t, "الحراش", resp.Name)

	subRegions.On("Save", ctx, mock.AnythingOfType("*shipping.SubRegion")).Return(shared.ErrAlreadyExists).Once()
	_, err = service.AddSubRegion(ctx, SubRegionForm{Region: algiers, Name: "الحراش"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = service.AddSubRegion(ctx, SubRegionForm{Region: algiers})
	var v *shared.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, []string{"name"}, v.Fields)
}

func TestShippingService_ListAndDeleteSubRegions(t *testing.T) {
	service, _, subRegions := newService()
	ctx := context.Background()

	sr, err := shipping.NewSubRegion("وهران", "عين الترك")
	require.NoError(t, err)
	subRegions.On("List", ctx).Return([]shipping.SubRegion{*sr}, nil)
	subRegions.On("Delete", ctx, sr.ID).Return(nil)

	out, err := service.ListSubRegions(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "وهران", out[0].Region)

	assert.NoError(t, service.DeleteSubRegion(ctx, sr.ID))
}
