package http

import (
	natsadapter "github.com/Hamza-Xoho/digital-surveyor/internal/adapters/nats"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/usecases"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/geocache"
)

// Dependencies holds all services needed by HTTP handlers. Publisher and
// Cache are optional; readiness reports them as not configured when nil.
type Dependencies struct {
	Assessments *usecases.AssessmentService
	Catalog     ports.VehicleCatalog
	Publisher   *natsadapter.Publisher
	Cache       geocache.Store
}
