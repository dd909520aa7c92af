package services

import (
	"context"
	"fmt"

	"zonelan-service/internal/models"
	"zonelan-service/internal/repository"

	"go.uber.org/zap"
)

// CustomerService define las operaciones sobre clientes e incidencias
type CustomerService interface {
	CreateCustomer(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int, req *models.CustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int) error

	CreateIncident(ctx context.Context, req *models.IncidentRequest) (*models.Incident, error)
	GetIncident(ctx context.Context, id int) (*models.Incident, error)
	ListIncidents(ctx context.Context, customerID *int) ([]*models.Incident, error)
	UpdateIncident(ctx context.Context, id int, req *models.IncidentRequest) (*models.Incident, error)
	DeleteIncident(ctx context.Context, id int) error
}

// customerService implementa CustomerService
type customerService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewCustomerService crea una nueva instancia del servicio
func NewCustomerService(store repository.Store, logger *zap.Logger) CustomerService {
	return &customerService{store: store, logger: logger}
}

func (s *customerService) CreateCustomer(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if err := s.store.Queries().CreateCustomer(ctx, customer); err != nil {
		s.logger.Error("Error creando cliente", zap.Error(err))
		return nil, err
	}
	s.logger.Info("✅ Cliente creado", zap.Int("customer_id", customer.ID))
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	customer, err := s.store.Queries().GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente %d", ErrNotFound, id)
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.store.Queries().ListCustomers(ctx)
}

func (s *customerService) UpdateCustomer(ctx context.Context, id int, req *models.CustomerRequest) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = req.Name
	customer.TaxID = req.TaxID
	customer.Address = req.Address
	customer.Phone = req.Phone
	customer.Email = req.Email
	if err := s.store.Queries().UpdateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id int) error {
	return s.store.Queries().DeleteCustomer(ctx, id)
}

func (s *customerService) CreateIncident(ctx context.Context, req *models.IncidentRequest) (*models.Incident, error) {
	status := req.Status
	if status == "" {
		status = models.IncidentPending
	}

	incident := &models.Incident{
		CustomerID:  req.CustomerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    req.Priority,
	}

	err := s.store.InTx(ctx, func(q repository.Queries) error {
		customer, err := q.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return fmt.Errorf("%w: cliente %d", ErrNotFound, req.CustomerID)
		}
		return q.CreateIncident(ctx, incident)
	})
	if err != nil {
		s.logger.Error("Error creando incidencia", zap.Error(err))
		return nil, err
	}

	s.logger.Info("✅ Incidencia creada",
		zap.Int("incident_id", incident.ID),
		zap.Int("customer_id", incident.CustomerID))
	return incident, nil
}

func (s *customerService) GetIncident(ctx context.Context, id int) (*models.Incident, error) {
	incident, err := s.store.Queries().GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, fmt.Errorf("%w: incidencia %d", ErrNotFound, id)
	}
	return incident, nil
}

func (s *customerService) ListIncidents(ctx context.Context, customerID *int) ([]*models.Incident, error) {
	return s.store.Queries().ListIncidents(ctx, customerID)
}

func (s *customerService) UpdateIncident(ctx context.Context, id int, req *models.IncidentRequest) (*models.Incident, error) {
	incident, err := s.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	incident.Title = req.Title
	incident.Description = req.Description
	if req.Status != "" {
		incident.Status = req.Status
	}
	incident.Priority = req.Priority
	if err := s.store.Queries().UpdateIncident(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// DeleteIncident elimina una incidencia con sus partes de trabajo
func (s *customerService) DeleteIncident(ctx context.Context, id int) error {
	if _, err := s.GetIncident(ctx, id); err != nil {
		return err
	}
	return s.store.Queries().DeleteIncident(ctx, id)
}
