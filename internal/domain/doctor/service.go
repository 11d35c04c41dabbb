package doctor

import (
	"context"
	"errors"
	"strings"

	"github.com/medbook/medbook/internal/platform/apperr"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/pkg/pagination"
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) Create(ctx context.Context, id auth.Identity, req CreateRequest) (int64, error) {
	if !auth.CanAccess(id, auth.Doctor(), auth.ActionCreate) {
		return 0, forbidden(id)
	}
	newID, err := s.doctors.Create(ctx, &Doctor{
		Name:           strings.TrimSpace(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Availability:   req.Availability,
	})
	if err != nil {
		return 0, apperr.Storage("Failed to create doctor. Please try again.", err)
	}
	return newID, nil
}

func (s *Service) List(ctx context.Context, page pagination.Params) ([]*Doctor, error) {
	items, err := s.doctors.ListAll(ctx, page)
	if err != nil {
		return nil, apperr.Storage("Failed to get doctors. Please try again.", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, doctorID int64) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, doctorID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("Doctor not found")
	}
	if err != nil {
		return nil, apperr.Storage("Failed to get doctor. Please try again.", err)
	}
	return d, nil
}

func (s *Service) ListBySpecialization(ctx context.Context, specialization string, page pagination.Params) ([]*Doctor, error) {
	items, err := s.doctors.ListBySpecialization(ctx, specialization, page)
	if err != nil {
		return nil, apperr.Storage("Failed to get doctors. Please try again.", err)
	}
	return items, nil
}

// Update merges the set fields onto the stored doctor and writes the
// result back as a full replace.
func (s *Service) Update(ctx context.Context, id auth.Identity, doctorID int64, req UpdateRequest) error {
	if !auth.CanAccess(id, auth.Doctor(), auth.ActionUpdate) {
		return forbidden(id)
	}
	d, err := s.doctors.GetByID(ctx, doctorID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Doctor not found")
	}
	if err != nil {
		return apperr.Storage("Failed to update doctor. Please try again.", err)
	}

	req.apply(d)
	n, err := s.doctors.Update(ctx, d)
	if err != nil {
		return apperr.Storage("Failed to update doctor. Please try again.", err)
	}
	if n == 0 {
		return apperr.NotFound("Doctor not found")
	}
	return nil
}

// Delete removes a doctor. Doctors with booked appointments are protected
// by the foreign key and the attempt fails as a storage error.
func (s *Service) Delete(ctx context.Context, id auth.Identity, doctorID int64) error {
	if !auth.CanAccess(id, auth.Doctor(), auth.ActionDelete) {
		return forbidden(id)
	}
	n, err := s.doctors.Delete(ctx, doctorID)
	if err != nil {
		return apperr.Storage("Failed to delete doctor. Please try again.", err)
	}
	if n == 0 {
		return apperr.NotFound("Doctor not found")
	}
	return nil
}

func forbidden(id auth.Identity) error {
	if !id.Authenticated() {
		return apperr.Unauthorized("Authentication required")
	}
	return apperr.Forbidden("Only administrators can manage doctors")
}
