package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveOrderType(t *testing.T) {
	// заказ на оффер продажи это покупка, на оффер закупки продажа
	ot, err := DeriveOrderType(OfferTypeSale)
	require.NoError(t, err)
	require.Equal(t, OrderTypeBuy, ot)

	ot, err = DeriveOrderType(OfferTypeBuy)
	require.NoError(t, err)
	require.Equal(t, OrderTypeSell, ot)

	_, err = DeriveOrderType("lease")
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestOrderParties(t *testing.T) {
	buyOrder := &Order{OrderType: OrderTypeBuy, InitiatorUserID: 1, CounterpartyUserID: 2}
	require.Equal(t, int64(1), buyOrder.BuyerID())
	require.Equal(t, int64(2), buyOrder.SellerID())

	sellOrder := &Order{OrderType: OrderTypeSell, InitiatorUserID: 1, CounterpartyUserID: 2}
	require.Equal(t, int64(2), sellOrder.BuyerID())
	require.Equal(t, int64(1), sellOrder.SellerID())
}

func TestCheckStatusTransitionChain(t *testing.T) {
	// инициатор покупает, значит продавец контрагент (id 2)
	order := func(status string) *Order {
		return &Order{
			OrderType:          OrderTypeBuy,
			OrderStatus:        status,
			InitiatorUserID:    1,
			CounterpartyUserID: 2,
		}
	}

	tests := []struct {
		name      string
		from      string
		to        string
		callerID  int64
		expectErr error
	}{
		{"seller confirms", OrderStatusPending, OrderStatusConfirmed, 2, nil},
		{"seller starts processing", OrderStatusConfirmed, OrderStatusProcessing, 2, nil},
		{"seller ships", OrderStatusProcessing, OrderStatusShipped, 2, nil},
		{"buyer confirms delivery", OrderStatusShipped, OrderStatusDelivered, 1, nil},
		{"buyer cannot confirm", OrderStatusPending, OrderStatusConfirmed, 1, ErrForbidden},
		{"buyer cannot ship", OrderStatusProcessing, OrderStatusShipped, 1, ErrForbidden},
		{"seller cannot confirm delivery", OrderStatusShipped, OrderStatusDelivered, 2, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatusTransition(order(tt.from), tt.to, tt.callerID)
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckStatusTransitionRejectsSkips(t *testing.T) {
	o := &Order{
		OrderType:          OrderTypeBuy,
		OrderStatus:        OrderStatusPending,
		InitiatorUserID:    1,
		CounterpartyUserID: 2,
	}

	// прыжок через статус
	err := CheckStatusTransition(o, OrderStatusShipped, 2)
	require.True(t, IsValidation(err))

	// движение назад
	o.OrderStatus = OrderStatusConfirmed
	err = CheckStatusTransition(o, OrderStatusPending, 2)
	require.True(t, IsValidation(err))

	// из конечного статуса пути нет
	o.OrderStatus = OrderStatusDelivered
	err = CheckStatusTransition(o, OrderStatusPending, 2)
	require.True(t, IsValidation(err))

	// неизвестный статус
	o.OrderStatus = OrderStatusPending
	err = CheckStatusTransition(o, "cancelled", 2)
	require.True(t, IsValidation(err))
}
