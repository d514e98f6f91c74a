package dashboard

import (
	"context"

	"gearbook/internal/features/booking"
	"gearbook/internal/features/equipment"
)

// Stats is the combined snapshot the dashboard screen renders in one call.
type Stats struct {
	Equipment *equipment.Stats `json:"equipment"`
	Bookings  *booking.Stats   `json:"bookings"`
}

type DashboardService interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type DashboardServiceImpl struct {
	equipmentService equipment.EquipmentService
	bookingService   booking.BookingService
}

func NewDashboardService(equipmentService equipment.EquipmentService, bookingService booking.BookingService) DashboardService {
	return &DashboardServiceImpl{
		equipmentService: equipmentService,
		bookingService:   bookingService,
	}
}

func (s *DashboardServiceImpl) GetStats(ctx context.Context) (*Stats, error) {
	eqStats, err := s.equipmentService.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	bkStats, err := s.bookingService.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Equipment: eqStats, Bookings: bkStats}, nil
}
