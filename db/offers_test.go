package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeScope(t *testing.T) {
	require.Equal(t, ScopeMy, NormalizeScope("my"))
	require.Equal(t, ScopeOthers, NormalizeScope("others"))
	require.Equal(t, ScopeAll, NormalizeScope("all"))

	// неизвестные значения тихо сводятся к my
	require.Equal(t, ScopeMy, NormalizeScope(""))
	require.Equal(t, ScopeMy, NormalizeScope("everyone"))
	require.Equal(t, ScopeMy, NormalizeScope("ALL"))
}

func TestValidateOfferType(t *testing.T) {
	require.NoError(t, ValidateOfferType(""))
	require.NoError(t, ValidateOfferType(OfferTypeSale))
	require.NoError(t, ValidateOfferType(OfferTypeBuy))

	err := ValidateOfferType("rent")
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestValidateCreateOffer(t *testing.T) {
	valid := func() *CreateOfferRequest {
		return &CreateOfferRequest{
			ProductID:     1,
			WarehouseID:   2,
			OfferType:     OfferTypeSale,
			PricePerUnit:  99.5,
			AvailableLots: 10,
			UnitsPerLot:   5,
		}
	}
	require.NoError(t, validateCreateOffer(valid()))

	tests := []struct {
		name   string
		mutate func(*CreateOfferRequest)
	}{
		{"missing product", func(r *CreateOfferRequest) { r.ProductID = 0 }},
		{"missing warehouse", func(r *CreateOfferRequest) { r.WarehouseID = 0 }},
		{"bad offer type", func(r *CreateOfferRequest) { r.OfferType = "rent" }},
		{"zero price", func(r *CreateOfferRequest) { r.PricePerUnit = 0 }},
		{"negative lots", func(r *CreateOfferRequest) { r.AvailableLots = -1 }},
		{"zero units per lot", func(r *CreateOfferRequest) { r.UnitsPerLot = 0 }},
		{"negative shipping days", func(r *CreateOfferRequest) { r.MaxShippingDays = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := validateCreateOffer(req)
			require.Error(t, err)
			require.True(t, IsValidation(err))
		})
	}
}

func TestApplyOfferUpdateWarehouseChange(t *testing.T) {
	o := &Offer{ID: 1, WarehouseID: 2, Latitude: 55.75, Longitude: 37.62}
	newWarehouse := int64(3)

	coordsCalls := 0
	coords := func(warehouseID int64) (float64, float64, error) {
		coordsCalls++
		require.Equal(t, newWarehouse, warehouseID)
		return 59.93, 30.31, nil
	}

	err := applyOfferUpdate(o, &UpdateOfferRequest{WarehouseID: &newWarehouse}, coords)
	require.NoError(t, err)
	require.Equal(t, 1, coordsCalls)
	// координаты зеркалят новый склад
	require.Equal(t, newWarehouse, o.WarehouseID)
	require.Equal(t, 59.93, o.Latitude)
	require.Equal(t, 30.31, o.Longitude)
}

func TestApplyOfferUpdateSameWarehouse(t *testing.T) {
	o := &Offer{ID: 1, WarehouseID: 2, Latitude: 55.75, Longitude: 37.62}
	sameWarehouse := int64(2)

	coords := func(warehouseID int64) (float64, float64, error) {
		t.Fatal("coords must not be read when warehouse is unchanged")
		return 0, 0, nil
	}

	err := applyOfferUpdate(o, &UpdateOfferRequest{WarehouseID: &sameWarehouse}, coords)
	require.NoError(t, err)
	require.Equal(t, 55.75, o.Latitude)
	require.Equal(t, 37.62, o.Longitude)
}

func TestApplyOfferUpdateMissingWarehouse(t *testing.T) {
	o := &Offer{ID: 1, WarehouseID: 2, Latitude: 55.75, Longitude: 37.62}
	missing := int64(99)

	coords := func(warehouseID int64) (float64, float64, error) {
		return 0, 0, ErrNotFound
	}

	err := applyOfferUpdate(o, &UpdateOfferRequest{WarehouseID: &missing}, coords)
	require.ErrorIs(t, err, ErrNotFound)
	// оффер не изменился
	require.Equal(t, int64(2), o.WarehouseID)
	require.Equal(t, 55.75, o.Latitude)
}

func TestApplyOfferUpdateFieldValidation(t *testing.T) {
	coords := func(warehouseID int64) (float64, float64, error) {
		return 0, 0, nil
	}

	badPrice := -1.0
	err := applyOfferUpdate(&Offer{}, &UpdateOfferRequest{PricePerUnit: &badPrice}, coords)
	require.True(t, IsValidation(err))

	badLots := -1
	err = applyOfferUpdate(&Offer{}, &UpdateOfferRequest{AvailableLots: &badLots}, coords)
	require.True(t, IsValidation(err))

	goodPrice := 12.5
	isPublic := false
	o := &Offer{PricePerUnit: 1}
	err = applyOfferUpdate(o, &UpdateOfferRequest{PricePerUnit: &goodPrice, IsPublic: &isPublic}, coords)
	require.NoError(t, err)
	require.Equal(t, 12.5, o.PricePerUnit)
	require.False(t, o.IsPublic)
}

func TestBuildOfferFilterScope(t *testing.T) {
	where, args := buildOfferFilter(&OfferFilter{Scope: ScopeMy}, 7, false)
	require.Equal(t, " WHERE user_id = $1", where)
	require.Equal(t, []interface{}{int64(7)}, args)

	where, args = buildOfferFilter(&OfferFilter{Scope: ScopeOthers}, 7, false)
	require.Equal(t, " WHERE user_id <> $1", where)
	require.Equal(t, []interface{}{int64(7)}, args)

	where, args = buildOfferFilter(&OfferFilter{Scope: ScopeAll}, 7, false)
	require.Equal(t, "", where)
	require.Empty(t, args)

	// неизвестная область ведет себя как my
	where, _ = buildOfferFilter(&OfferFilter{Scope: "garbage"}, 7, false)
	require.Equal(t, " WHERE user_id = $1", where)
}

func TestBuildOfferFilterPublicIgnoresScope(t *testing.T) {
	where, args := buildOfferFilter(&OfferFilter{Scope: ScopeAll}, 0, true)
	require.Equal(t, " WHERE is_public = TRUE", where)
	require.Empty(t, args)
}

func TestBuildOfferFilterPredicates(t *testing.T) {
	priceMin := 10.0
	priceMax := 100.0
	lots := 3
	nds := 20
	days := 7

	f := &OfferFilter{
		Scope:     ScopeAll,
		OfferType: OfferTypeSale,
		PriceMin:  &priceMin,
		PriceMax:  &priceMax,
		Geographic: &GeographicFilter{
			MinLatitude:  50,
			MaxLatitude:  60,
			MinLongitude: 30,
			MaxLongitude: 40,
		},
		AvailableLots:   &lots,
		TaxNDS:          &nds,
		MaxShippingDays: &days,
	}

	where, args := buildOfferFilter(f, 0, false)
	require.Equal(t,
		" WHERE offer_type = $1 AND price_per_unit >= $2 AND price_per_unit <= $3"+
			" AND latitude >= $4 AND latitude <= $5 AND longitude >= $6 AND longitude <= $7"+
			" AND available_lots >= $8 AND tax_nds = $9 AND max_shipping_days <= $10",
		where)
	require.Len(t, args, 10)
	require.Equal(t, OfferTypeSale, args[0])
	require.Equal(t, priceMin, args[1])
	require.Equal(t, 50.0, args[3])
	require.Equal(t, days, args[9])
}
