package issuecache

// Op names a cache operation for observers.
type Op string

// Cache operations.
const (
	OpGetByID          Op = "get_by_id"
	OpGetPage          Op = "get_page"
	OpCreate           Op = "create"
	OpEdit             Op = "edit"
	OpStatusIndicators Op = "status_indicators"
)

// Observer receives cache events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// Hit is called when a read is answered from local data.
	Hit(op Op)

	// Miss is called when a read needs the gateway.
	Miss(op Op)

	// GatewayDone is called when a gateway call finishes. err is nil on success.
	GatewayDone(op Op, err error)
}

type nopObserver struct{}

func (nopObserver) Hit(Op)                {}
func (nopObserver) Miss(Op)               {}
func (nopObserver) GatewayDone(Op, error) {}
