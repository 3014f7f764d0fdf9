package services

import (
	"context"
	"time"

	"menu_platform/internal/auth"
	"menu_platform/internal/models"
	"menu_platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// OrderInput is the caller-supplied payload for order creation. Tax and Tip
// are pointers so an explicit zero can be told apart from an absent value.
type OrderInput struct {
	OrderNumber         string                  `json:"order_number"`
	RestaurantID        string                  `json:"restaurant_id"`
	CustomerID          string                  `json:"customer_id"`
	TableNumber         string                  `json:"table_number"`
	OrderType           string                  `json:"order_type"`
	Items               []models.OrderItem      `json:"items"`
	TaxRate             float64                 `json:"tax_rate"`
	TipPercentage       float64                 `json:"tip_percentage"`
	Tax                 *float64                `json:"tax"`
	Tip                 *float64                `json:"tip"`
	ServiceFee          float64                 `json:"service_fee"`
	DeliveryFee         float64                 `json:"delivery_fee"`
	Discount            float64                 `json:"discount"`
	PaymentMethod       string                  `json:"payment_method"`
	DeliveryAddress     *models.DeliveryAddress `json:"delivery_address"`
	SpecialInstructions string                  `json:"special_instructions"`
	Notes               string                  `json:"notes"`
}

// OrderPatch is the allow-list of fields a full update may touch. Anything
// not listed here is ignored; derived fields are recomputed, never accepted.
type OrderPatch struct {
	Items               *[]models.OrderItem     `json:"items"`
	TaxRate             *float64                `json:"tax_rate"`
	TipPercentage       *float64                `json:"tip_percentage"`
	Tax                 *float64                `json:"tax"`
	Tip                 *float64                `json:"tip"`
	ServiceFee          *float64                `json:"service_fee"`
	DeliveryFee         *float64                `json:"delivery_fee"`
	Discount            *float64                `json:"discount"`
	TableNumber         *string                 `json:"table_number"`
	OrderType           *string                 `json:"order_type"`
	PaymentStatus       *string                 `json:"payment_status"`
	PaymentMethod       *string                 `json:"payment_method"`
	DeliveryAddress     *models.DeliveryAddress `json:"delivery_address"`
	SpecialInstructions *string                 `json:"special_instructions"`
	Notes               *string                 `json:"notes"`
}

type OrderQuery struct {
	CustomerID   string
	RestaurantID string
	Status       string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	Limit        int
}

type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	Count      int            `json:"count"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	TotalPages int64          `json:"total_pages"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, input *OrderInput, claims *auth.Claims) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrders(ctx context.Context, query OrderQuery) (*OrderPage, error)
	UpdateOrder(ctx context.Context, id string, patch *OrderPatch, claims *auth.Claims) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status string, claims *auth.Claims) (*models.Order, error)
	CancelOrder(ctx context.Context, id string, reason string, claims *auth.Claims) (*models.Order, bool, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	log       *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, log *zap.Logger) OrderService {
	return &orderService{orderRepo: orderRepo, log: log}
}

func (s *orderService) CreateOrder(ctx context.Context, input *OrderInput, claims *auth.Claims) (*models.Order, error) {
	var missing []string
	if input.RestaurantID == "" {
		missing = append(missing, "restaurant_id")
	}
	if len(input.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return nil, newValidationError("missing required fields: %s", joinFields(missing))
	}

	now := time.Now().UTC()

	orderNumber := input.OrderNumber
	if orderNumber == "" {
		orderNumber = "ORD-" + now.Format("20060102150405")
	}

	pricing := PriceOrder(input.Items, input.TaxRate, input.TipPercentage, input.Tax, input.Tip,
		input.ServiceFee, input.DeliveryFee, input.Discount)

	order := &models.Order{
		OrderNumber:         orderNumber,
		RestaurantID:        input.RestaurantID,
		CustomerID:          input.CustomerID,
		TableNumber:         input.TableNumber,
		OrderType:           input.OrderType,
		Status:              string(models.OrderPending),
		IsActive:            true,
		Items:               input.Items,
		Subtotal:            pricing.Subtotal,
		Tax:                 pricing.Tax,
		TaxRate:             input.TaxRate,
		Tip:                 pricing.Tip,
		TipPercentage:       input.TipPercentage,
		ServiceFee:          pricing.ServiceFee,
		DeliveryFee:         pricing.DeliveryFee,
		Discount:            pricing.Discount,
		Total:               pricing.Total,
		PaymentStatus:       "unpaid",
		PaymentMethod:       input.PaymentMethod,
		DeliveryAddress:     input.DeliveryAddress,
		SpecialInstructions: input.SpecialInstructions,
		Notes:               input.Notes,
		CreatedBy:           claims.Username(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	id, err := s.orderRepo.Insert(ctx, order)
	if err != nil {
		return nil, err
	}
	order.ID = id

	s.log.Info("order created",
		zap.String("order_id", id.Hex()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total))

	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return order, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fromStore(err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, query OrderQuery) (*OrderPage, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	orders, totalCount, err := s.orderRepo.List(ctx, repository.OrderFilter{
		CustomerID:   query.CustomerID,
		RestaurantID: query.RestaurantID,
		Status:       query.Status,
		StartDate:    query.StartDate,
		EndDate:      query.EndDate,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:     orders,
		Count:      len(orders),
		TotalCount: totalCount,
		Page:       page,
		TotalPages: totalPages(totalCount, limit),
	}, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, patch *OrderPatch, claims *auth.Claims) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	set := bson.M{
		"updated_at": time.Now().UTC(),
		"updated_by": claims.Username(),
	}

	if patch.TaxRate != nil {
		set["tax_rate"] = *patch.TaxRate
	}
	if patch.TipPercentage != nil {
		set["tip_percentage"] = *patch.TipPercentage
	}
	if patch.TableNumber != nil {
		set["table_number"] = *patch.TableNumber
	}
	if patch.OrderType != nil {
		set["order_type"] = *patch.OrderType
	}
	if patch.PaymentStatus != nil {
		set["payment_status"] = *patch.PaymentStatus
	}
	if patch.PaymentMethod != nil {
		set["payment_method"] = *patch.PaymentMethod
	}
	if patch.DeliveryAddress != nil {
		set["delivery_address"] = patch.DeliveryAddress
	}
	if patch.SpecialInstructions != nil {
		set["special_instructions"] = *patch.SpecialInstructions
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}

	if patch.Items != nil {
		// Items changed: every derived financial field must be recomputed,
		// with omitted inputs falling back to the stored order.
		items := *patch.Items
		taxRate := existing.TaxRate
		if patch.TaxRate != nil {
			taxRate = *patch.TaxRate
		}
		tipPercentage := existing.TipPercentage
		if patch.TipPercentage != nil {
			tipPercentage = *patch.TipPercentage
		}

		subtotal := PriceItems(items)

		tax := existing.Tax
		if patch.Tax != nil {
			tax = *patch.Tax
		}
		if taxRate > 0 {
			tax = round2(subtotal * taxRate)
		}

		tip := existing.Tip
		if patch.Tip != nil {
			tip = *patch.Tip
		} else if tipPercentage > 0 {
			tip = round2(subtotal * tipPercentage)
		}

		serviceFee := existing.ServiceFee
		if patch.ServiceFee != nil {
			serviceFee = *patch.ServiceFee
		}
		deliveryFee := existing.DeliveryFee
		if patch.DeliveryFee != nil {
			deliveryFee = *patch.DeliveryFee
		}
		discount := existing.Discount
		if patch.Discount != nil {
			discount = *patch.Discount
		}

		set["items"] = items
		set["subtotal"] = subtotal
		set["tax"] = tax
		set["tip"] = tip
		set["service_fee"] = serviceFee
		set["delivery_fee"] = deliveryFee
		set["discount"] = discount
		set["total"] = subtotal + tax + tip + serviceFee + deliveryFee - discount
	} else {
		if patch.Tax != nil {
			set["tax"] = *patch.Tax
		}
		if patch.Tip != nil {
			set["tip"] = *patch.Tip
		}
		if patch.ServiceFee != nil {
			set["service_fee"] = *patch.ServiceFee
		}
		if patch.DeliveryFee != nil {
			set["delivery_fee"] = *patch.DeliveryFee
		}
		if patch.Discount != nil {
			set["discount"] = *patch.Discount
		}
	}

	if _, err := s.orderRepo.UpdateFields(ctx, oid, set); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}
	return updated, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, status string, claims *auth.Claims) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, newValidationError("invalid status, must be one of: %s", joinFields(models.ValidOrderStatuses))
	}

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.orderRepo.GetByID(ctx, oid); err != nil {
		return nil, fromStore(err)
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":     status,
		"updated_at": now,
		"updated_by": claims.Username(),
	}

	switch models.OrderStatus(status) {
	case models.OrderConfirmed:
		set["confirmed_at"] = now
	case models.OrderPreparing:
		set["preparing_at"] = now
	case models.OrderReady:
		set["ready_at"] = now
		set["actual_ready_time"] = now
	case models.OrderDelivered:
		set["delivered_at"] = now
	case models.OrderCompleted:
		set["completed_at"] = now
	case models.OrderCancelled:
		set["cancelled_at"] = now
	}

	if _, err := s.orderRepo.UpdateFields(ctx, oid, set); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err)
	}

	s.log.Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", status))

	return updated, nil
}

// CancelOrder soft-deletes an order. The second return value reports that the
// order was already cancelled, in which case nothing is written.
func (s *orderService) CancelOrder(ctx context.Context, id string, reason string, claims *auth.Claims) (*models.Order, bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, false, fromStore(err)
	}

	if existing.Status == string(models.OrderCancelled) {
		return existing, true, nil
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":              string(models.OrderCancelled),
		"is_active":           false,
		"updated_at":          now,
		"cancelled_at":        now,
		"cancelled_by":        claims.Username(),
		"cancellation_reason": reason,
	}

	if _, err := s.orderRepo.UpdateFields(ctx, oid, set); err != nil {
		return nil, false, err
	}

	updated, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, false, fromStore(err)
	}

	s.log.Info("order cancelled", zap.String("order_id", id), zap.String("reason", reason))

	return updated, false, nil
}
