package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP handler group that mounts its own
// routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
