// Package testhelpers provides an in-memory implementation of every
// repository interface so services can be tested with no network or
// database dependency.
package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tracewright/apqp-engine/pkg/apperrors"
	"github.com/tracewright/apqp-engine/pkg/models"
	"github.com/tracewright/apqp-engine/pkg/repositories"
)

var (
	_ repositories.ProductRepository            = (*MemProductRepo)(nil)
	_ repositories.CharacteristicRepository     = (*MemCharacteristicRepo)(nil)
	_ repositories.RiskHeaderRepository         = (*MemRiskHeaderRepo)(nil)
	_ repositories.RiskLineRepository           = (*MemRiskLineRepo)(nil)
	_ repositories.ControlPlanRepository        = (*MemControlPlanRepo)(nil)
	_ repositories.ControlPlanItemRepository    = (*MemControlItemRepo)(nil)
	_ repositories.SopRepository                = (*MemSopRepo)(nil)
	_ repositories.SopStepRepository            = (*MemSopStepRepo)(nil)
	_ repositories.InspectionStandardRepository = (*MemStandardRepo)(nil)
	_ repositories.InspectionItemRepository     = (*MemInspectionRepo)(nil)
)

// MemStore is a map-backed stand-in for the PostgreSQL entity store.
// Like the real store it enforces nothing beyond per-row storage: no
// uniqueness, no foreign keys. Deletes cascade the way the schema does.
type MemStore struct {
	mu sync.Mutex

	products        map[uuid.UUID]*models.Product
	characteristics map[uuid.UUID]*models.Characteristic
	riskHeaders     map[uuid.UUID]*models.RiskHeader
	riskLines       map[uuid.UUID]*models.RiskLine
	controlPlans    map[uuid.UUID]*models.ControlPlan
	controlItems    map[uuid.UUID]*models.ControlPlanItem
	sops            map[uuid.UUID]*models.Sop
	sopSteps        map[uuid.UUID]*models.SopStep
	standards       map[uuid.UUID]*models.InspectionStandard
	inspections     map[uuid.UUID]*models.InspectionItem

	seq int64

	// FailRiskLineInsertAfter, when positive, fails the n+1th risk line
	// insert. Used to force partial-insert scenarios.
	FailRiskLineInsertAfter int

	riskLineInserts int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		products:                make(map[uuid.UUID]*models.Product),
		characteristics:         make(map[uuid.UUID]*models.Characteristic),
		riskHeaders:             make(map[uuid.UUID]*models.RiskHeader),
		riskLines:               make(map[uuid.UUID]*models.RiskLine),
		controlPlans:            make(map[uuid.UUID]*models.ControlPlan),
		controlItems:            make(map[uuid.UUID]*models.ControlPlanItem),
		sops:                    make(map[uuid.UUID]*models.Sop),
		sopSteps:                make(map[uuid.UUID]*models.SopStep),
		standards:               make(map[uuid.UUID]*models.InspectionStandard),
		inspections:             make(map[uuid.UUID]*models.InspectionItem),
		FailRiskLineInsertAfter: -1,
	}
}

// stamp produces strictly increasing creation times so that ORDER BY
// created_at in the real store maps to a stable sort here.
func (m *MemStore) stamp() time.Time {
	m.seq++
	return time.Unix(0, m.seq)
}

// Products returns the store's ProductRepository view.
func (m *MemStore) Products() *MemProductRepo { return &MemProductRepo{store: m} }

// Characteristics returns the store's CharacteristicRepository view.
func (m *MemStore) Characteristics() *MemCharacteristicRepo { return &MemCharacteristicRepo{store: m} }

// RiskHeaders returns the store's RiskHeaderRepository view.
func (m *MemStore) RiskHeaders() *MemRiskHeaderRepo { return &MemRiskHeaderRepo{store: m} }

// RiskLines returns the store's RiskLineRepository view.
func (m *MemStore) RiskLines() *MemRiskLineRepo { return &MemRiskLineRepo{store: m} }

// ControlPlans returns the store's ControlPlanRepository view.
func (m *MemStore) ControlPlans() *MemControlPlanRepo { return &MemControlPlanRepo{store: m} }

// ControlItems returns the store's ControlPlanItemRepository view.
func (m *MemStore) ControlItems() *MemControlItemRepo { return &MemControlItemRepo{store: m} }

// Sops returns the store's SopRepository view.
func (m *MemStore) Sops() *MemSopRepo { return &MemSopRepo{store: m} }

// SopSteps returns the store's SopStepRepository view.
func (m *MemStore) SopSteps() *MemSopStepRepo { return &MemSopStepRepo{store: m} }

// Standards returns the store's InspectionStandardRepository view.
func (m *MemStore) Standards() *MemStandardRepo { return &MemStandardRepo{store: m} }

// Inspections returns the store's InspectionItemRepository view.
func (m *MemStore) Inspections() *MemInspectionRepo { return &MemInspectionRepo{store: m} }

// MemProductRepo implements repositories.ProductRepository.
type MemProductRepo struct{ store *MemStore }

func (r *MemProductRepo) Create(_ context.Context, p *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.store.stamp()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *MemProductRepo) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *MemProductRepo) List(_ context.Context) ([]*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Product
	for _, p := range r.store.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemProductRepo) Update(_ context.Context, p *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, apperrors.ErrNotFound)
	}
	p.UpdatedAt = r.store.stamp()
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *MemProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.products, id)
	// Cascade through the whole chain, mirroring the schema's FKs.
	for cid, c := range r.store.characteristics {
		if c.ProductID == id {
			delete(r.store.characteristics, cid)
		}
	}
	for hid, h := range r.store.riskHeaders {
		if h.ProductID == id {
			r.store.cascadeRiskHeader(hid)
		}
	}
	return nil
}

// MemCharacteristicRepo implements repositories.CharacteristicRepository.
type MemCharacteristicRepo struct{ store *MemStore }

func (r *MemCharacteristicRepo) Create(_ context.Context, c *models.Characteristic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.store.stamp()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.store.characteristics[c.ID] = &cp
	return nil
}

func (r *MemCharacteristicRepo) Get(_ context.Context, id uuid.UUID) (*models.Characteristic, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.characteristics[id]
	if !ok {
		return nil, fmt.Errorf("characteristic %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *MemCharacteristicRepo) GetByProduct(_ context.Context, productID uuid.UUID) ([]*models.Characteristic, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.Characteristic
	for _, c := range r.store.characteristics {
		if c.ProductID == productID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemCharacteristicRepo) Update(_ context.Context, c *models.Characteristic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.characteristics[c.ID]; !ok {
		return fmt.Errorf("characteristic %s: %w", c.ID, apperrors.ErrNotFound)
	}
	c.UpdatedAt = r.store.stamp()
	cp := *c
	r.store.characteristics[c.ID] = &cp
	return nil
}

func (r *MemCharacteristicRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.characteristics[id]; !ok {
		return fmt.Errorf("characteristic %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.characteristics, id)
	return nil
}

// MemRiskHeaderRepo implements repositories.RiskHeaderRepository.
type MemRiskHeaderRepo struct{ store *MemStore }

func (r *MemRiskHeaderRepo) Create(_ context.Context, h *models.RiskHeader) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Status == "" {
		h.Status = models.StatusDraft
	}
	if h.Revision == "" {
		h.Revision = "A"
	}
	h.CreatedAt = r.store.stamp()
	h.UpdatedAt = h.CreatedAt
	cp := *h
	r.store.riskHeaders[h.ID] = &cp
	return nil
}

func (r *MemRiskHeaderRepo) Get(_ context.Context, id uuid.UUID) (*models.RiskHeader, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	h, ok := r.store.riskHeaders[id]
	if !ok {
		return nil, fmt.Errorf("risk header %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *h
	return &cp, nil
}

func (r *MemRiskHeaderRepo) GetByProduct(_ context.Context, productID uuid.UUID) (*models.RiskHeader, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var found *models.RiskHeader
	for _, h := range r.store.riskHeaders {
		if h.ProductID != productID {
			continue
		}
		if found == nil || h.CreatedAt.Before(found.CreatedAt) {
			found = h
		}
	}
	if found == nil {
		return nil, fmt.Errorf("risk header for product %s: %w", productID, apperrors.ErrNotFound)
	}
	cp := *found
	return &cp, nil
}

func (r *MemRiskHeaderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.DocumentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	h, ok := r.store.riskHeaders[id]
	if !ok {
		return fmt.Errorf("risk header %s: %w", id, apperrors.ErrNotFound)
	}
	h.Status = status
	h.UpdatedAt = r.store.stamp()
	return nil
}

func (r *MemRiskHeaderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.riskHeaders[id]; !ok {
		return fmt.Errorf("risk header %s: %w", id, apperrors.ErrNotFound)
	}
	r.store.cascadeRiskHeader(id)
	return nil
}

// cascadeRiskHeader removes a header and everything below it. Caller
// holds the lock.
func (m *MemStore) cascadeRiskHeader(id uuid.UUID) {
	delete(m.riskHeaders, id)
	for lid, l := range m.riskLines {
		if l.HeaderID == id {
			delete(m.riskLines, lid)
		}
	}
	for pid, p := range m.controlPlans {
		if p.RiskHeaderID == id {
			m.cascadeControlPlan(pid)
		}
	}
}

func (m *MemStore) cascadeControlPlan(id uuid.UUID) {
	delete(m.controlPlans, id)
	for iid, i := range m.controlItems {
		if i.PlanID == id {
			delete(m.controlItems, iid)
		}
	}
	for sid, s := range m.sops {
		if s.ControlPlanID == id {
			delete(m.sops, sid)
			for stid, st := range m.sopSteps {
				if st.SopID == sid {
					delete(m.sopSteps, stid)
				}
			}
		}
	}
	for stdid, std := range m.standards {
		if std.ControlPlanID == id {
			delete(m.standards, stdid)
			for iid, i := range m.inspections {
				if i.StandardID == stdid {
					delete(m.inspections, iid)
				}
			}
		}
	}
}

// MemRiskLineRepo implements repositories.RiskLineRepository.
type MemRiskLineRepo struct{ store *MemStore }

func (r *MemRiskLineRepo) Create(_ context.Context, l *models.RiskLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.FailRiskLineInsertAfter >= 0 && r.store.riskLineInserts >= r.store.FailRiskLineInsertAfter {
		return fmt.Errorf("simulated insert failure")
	}
	r.store.riskLineInserts++
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = r.store.stamp()
	cp := *l
	r.store.riskLines[l.ID] = &cp
	return nil
}

func (r *MemRiskLineRepo) Get(_ context.Context, id uuid.UUID) (*models.RiskLine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.riskLines[id]
	if !ok {
		return nil, fmt.Errorf("risk line %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (r *MemRiskLineRepo) GetByHeader(_ context.Context, headerID uuid.UUID) ([]*models.RiskLine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.RiskLine
	for _, l := range r.store.riskLines {
		if l.HeaderID == headerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemRiskLineRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.riskLines[id]; !ok {
		return fmt.Errorf("risk line %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.riskLines, id)
	return nil
}

// MemControlPlanRepo implements repositories.ControlPlanRepository.
type MemControlPlanRepo struct{ store *MemStore }

func (r *MemControlPlanRepo) Create(_ context.Context, p *models.ControlPlan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	if p.Revision == "" {
		p.Revision = "A"
	}
	p.CreatedAt = r.store.stamp()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.store.controlPlans[p.ID] = &cp
	return nil
}

func (r *MemControlPlanRepo) Get(_ context.Context, id uuid.UUID) (*models.ControlPlan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.controlPlans[id]
	if !ok {
		return nil, fmt.Errorf("control plan %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *MemControlPlanRepo) GetByHeader(_ context.Context, riskHeaderID uuid.UUID) (*models.ControlPlan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var found *models.ControlPlan
	for _, p := range r.store.controlPlans {
		if p.RiskHeaderID != riskHeaderID {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			found = p
		}
	}
	if found == nil {
		return nil, fmt.Errorf("control plan for header %s: %w", riskHeaderID, apperrors.ErrNotFound)
	}
	cp := *found
	return &cp, nil
}

func (r *MemControlPlanRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.DocumentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.controlPlans[id]
	if !ok {
		return fmt.Errorf("control plan %s: %w", id, apperrors.ErrNotFound)
	}
	p.Status = status
	p.UpdatedAt = r.store.stamp()
	return nil
}

func (r *MemControlPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.controlPlans[id]; !ok {
		return fmt.Errorf("control plan %s: %w", id, apperrors.ErrNotFound)
	}
	r.store.cascadeControlPlan(id)
	return nil
}

// MemControlItemRepo implements repositories.ControlPlanItemRepository.
type MemControlItemRepo struct{ store *MemStore }

func (r *MemControlItemRepo) Create(_ context.Context, i *models.ControlPlanItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt = r.store.stamp()
	cp := *i
	r.store.controlItems[i.ID] = &cp
	return nil
}

func (r *MemControlItemRepo) Get(_ context.Context, id uuid.UUID) (*models.ControlPlanItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	i, ok := r.store.controlItems[id]
	if !ok {
		return nil, fmt.Errorf("control plan item %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *i
	return &cp, nil
}

func (r *MemControlItemRepo) GetByPlan(_ context.Context, planID uuid.UUID) ([]*models.ControlPlanItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.ControlPlanItem
	for _, i := range r.store.controlItems {
		if i.PlanID == planID {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemControlItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.controlItems[id]; !ok {
		return fmt.Errorf("control plan item %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.controlItems, id)
	return nil
}

// MemSopRepo implements repositories.SopRepository.
type MemSopRepo struct{ store *MemStore }

func (r *MemSopRepo) Create(_ context.Context, s *models.Sop) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.StatusDraft
	}
	if s.Revision == "" {
		s.Revision = "A"
	}
	s.CreatedAt = r.store.stamp()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	r.store.sops[s.ID] = &cp
	return nil
}

func (r *MemSopRepo) Get(_ context.Context, id uuid.UUID) (*models.Sop, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sops[id]
	if !ok {
		return nil, fmt.Errorf("sop %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *MemSopRepo) GetByPlan(_ context.Context, controlPlanID uuid.UUID) (*models.Sop, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var found *models.Sop
	for _, s := range r.store.sops {
		if s.ControlPlanID != controlPlanID {
			continue
		}
		if found == nil || s.CreatedAt.Before(found.CreatedAt) {
			found = s
		}
	}
	if found == nil {
		return nil, fmt.Errorf("sop for control plan %s: %w", controlPlanID, apperrors.ErrNotFound)
	}
	cp := *found
	return &cp, nil
}

func (r *MemSopRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.DocumentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sops[id]
	if !ok {
		return fmt.Errorf("sop %s: %w", id, apperrors.ErrNotFound)
	}
	s.Status = status
	s.UpdatedAt = r.store.stamp()
	return nil
}

func (r *MemSopRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sops[id]; !ok {
		return fmt.Errorf("sop %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.sops, id)
	for stid, st := range r.store.sopSteps {
		if st.SopID == id {
			delete(r.store.sopSteps, stid)
		}
	}
	return nil
}

// MemSopStepRepo implements repositories.SopStepRepository.
type MemSopStepRepo struct{ store *MemStore }

func (r *MemSopStepRepo) Create(_ context.Context, s *models.SopStep) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = r.store.stamp()
	cp := *s
	r.store.sopSteps[s.ID] = &cp
	return nil
}

func (r *MemSopStepRepo) GetBySop(_ context.Context, sopID uuid.UUID) ([]*models.SopStep, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.SopStep
	for _, s := range r.store.sopSteps {
		if s.SopID == sopID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepNumber < out[j].StepNumber })
	return out, nil
}

func (r *MemSopStepRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sopSteps[id]; !ok {
		return fmt.Errorf("sop step %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.sopSteps, id)
	return nil
}

// MemStandardRepo implements repositories.InspectionStandardRepository.
type MemStandardRepo struct{ store *MemStore }

func (r *MemStandardRepo) Create(_ context.Context, s *models.InspectionStandard) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.StatusDraft
	}
	if s.Revision == "" {
		s.Revision = "A"
	}
	s.CreatedAt = r.store.stamp()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	r.store.standards[s.ID] = &cp
	return nil
}

func (r *MemStandardRepo) Get(_ context.Context, id uuid.UUID) (*models.InspectionStandard, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.standards[id]
	if !ok {
		return nil, fmt.Errorf("inspection standard %s: %w", id, apperrors.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *MemStandardRepo) GetByPlan(_ context.Context, controlPlanID uuid.UUID) (*models.InspectionStandard, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var found *models.InspectionStandard
	for _, s := range r.store.standards {
		if s.ControlPlanID != controlPlanID {
			continue
		}
		if found == nil || s.CreatedAt.Before(found.CreatedAt) {
			found = s
		}
	}
	if found == nil {
		return nil, fmt.Errorf("inspection standard for control plan %s: %w", controlPlanID, apperrors.ErrNotFound)
	}
	cp := *found
	return &cp, nil
}

func (r *MemStandardRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.DocumentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.standards[id]
	if !ok {
		return fmt.Errorf("inspection standard %s: %w", id, apperrors.ErrNotFound)
	}
	s.Status = status
	s.UpdatedAt = r.store.stamp()
	return nil
}

func (r *MemStandardRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.standards[id]; !ok {
		return fmt.Errorf("inspection standard %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.standards, id)
	for iid, i := range r.store.inspections {
		if i.StandardID == id {
			delete(r.store.inspections, iid)
		}
	}
	return nil
}

// MemInspectionRepo implements repositories.InspectionItemRepository.
type MemInspectionRepo struct{ store *MemStore }

func (r *MemInspectionRepo) Create(_ context.Context, i *models.InspectionItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt = r.store.stamp()
	cp := *i
	r.store.inspections[i.ID] = &cp
	return nil
}

func (r *MemInspectionRepo) GetByStandard(_ context.Context, standardID uuid.UUID) ([]*models.InspectionItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.InspectionItem
	for _, i := range r.store.inspections {
		if i.StandardID == standardID {
			cp := *i
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemNumber < out[j].ItemNumber })
	return out, nil
}

func (r *MemInspectionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.inspections[id]; !ok {
		return fmt.Errorf("inspection item %s: %w", id, apperrors.ErrNotFound)
	}
	delete(r.store.inspections, id)
	return nil
}
