package agent

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// Registry holds the care pathway agents keyed by step identifier and
// dispatches records to them. Registration order is preserved so
// discovery endpoints list agents in pathway order.
type Registry struct {
	logger *logrus.Logger
	cfg    domain.CDSConfig
	agents map[string]Agent
	order  []string
}

// NewRegistry creates an empty agent registry. Call RegisterAll to
// populate it with the standard care pathway.
func NewRegistry(logger *logrus.Logger, cfg domain.CDSConfig) *Registry {
	return &Registry{
		logger: logger,
		cfg:    cfg,
		agents: make(map[string]Agent),
		order:  make([]string, 0, 7),
	}
}

// Register adds an agent under the given step identifier.
func (r *Registry) Register(id string, a Agent) error {
	if id == "" {
		return fmt.Errorf("agent id cannot be empty")
	}
	if a == nil {
		return fmt.Errorf("agent for %s cannot be nil", id)
	}
	if _, exists := r.agents[id]; exists {
		return fmt.Errorf("agent already registered: %s", id)
	}

	r.agents[id] = a
	r.order = append(r.order, id)
	r.logger.WithField("agent_id", id).Debug("Registered agent")
	return nil
}

// RegisterAll registers the standard care pathway agents in pathway
// order, from intake through gynecology review.
func (r *Registry) RegisterAll() error {
	r.logger.Info("Registering care pathway agents")

	if err := r.Register(StepPatientIntake, NewIntakeAgent(r.logger)); err != nil {
		return fmt.Errorf("failed to register intake agent: %w", err)
	}
	if err := r.Register(StepProcessLabReport, NewUploadLabsAgent(r.logger)); err != nil {
		return fmt.Errorf("failed to register upload labs agent: %w", err)
	}
	if err := r.Register(StepIdentifyPhenotype, NewPhenotypeAgent(r.logger)); err != nil {
		return fmt.Errorf("failed to register phenotype agent: %w", err)
	}
	if err := r.Register(StepRootCauseAnalysis, NewRootCauseAgent(r.logger, r.cfg)); err != nil {
		return fmt.Errorf("failed to register root cause agent: %w", err)
	}
	if err := r.Register(StepRecommendLabs, NewLabsAgent(r.logger, r.cfg)); err != nil {
		return fmt.Errorf("failed to register labs agent: %w", err)
	}
	if err := r.Register(StepNutritionPlan, NewDieticianAgent(r.logger)); err != nil {
		return fmt.Errorf("failed to register dietician agent: %w", err)
	}
	if err := r.Register(StepGynecologyReview, NewOBGYNAgent(r.logger)); err != nil {
		return fmt.Errorf("failed to register OBGYN agent: %w", err)
	}

	r.logger.WithField("agent_count", len(r.order)).Info("All care pathway agents registered successfully")
	return nil
}

// Get returns the agent registered under id.
func (r *Registry) Get(id string) (Agent, bool) {
	a, ok := r.agents[id]
	return a, ok
}

// IDs returns the registered step identifiers in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Infos returns the discovery records for all registered agents in
// registration order.
func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, Describe(id, r.agents[id]))
	}
	return infos
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	return len(r.agents)
}

// Process dispatches the record to the agent registered under id. An
// unknown id is a caller error and returns a Go error rather than a
// failure envelope.
func (r *Registry) Process(ctx context.Context, id string, record domain.PatientRecord) (*domain.AgentResponse, error) {
	a, ok := r.agents[id]
	if !ok {
		r.logger.WithField("agent_id", id).Warn("Unknown agent requested")
		return nil, fmt.Errorf("unknown agent: %s", id)
	}

	r.logger.WithFields(logrus.Fields{
		"agent_id":    id,
		"field_count": len(record),
	}).Debug("Dispatching record to agent")

	return a.Process(ctx, record), nil
}

// Validate checks that every registered agent reports complete
// metadata. It is called once at startup so a misconfigured agent
// fails fast instead of surfacing as an empty discovery entry.
func (r *Registry) Validate() error {
	for _, id := range r.order {
		a := r.agents[id]
		if a.Name() == "" {
			return fmt.Errorf("agent %s has no name", id)
		}
		if a.Description() == "" {
			return fmt.Errorf("agent %s has no description", id)
		}
	}

	r.logger.WithField("agent_count", len(r.order)).Debug("All agents validated successfully")
	return nil
}
