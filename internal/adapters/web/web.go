package web

// Re-export types from subpackages
import (
	websocket "github.com/lcalzada-xor/factmap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
)

// WSManager is re-exported from the websocket subpackage
type WSManager = websocket.WSManager

// WSMessage is re-exported from the websocket subpackage
type WSMessage = websocket.WSMessage

// Message types re-exported from the websocket subpackage
const (
	TypeFactsState = websocket.TypeFactsState
	TypeMapState   = websocket.TypeMapState
	TypeNavState   = websocket.TypeNavState
)

// NewWSManager creates a new WSManager
func NewWSManager(facts ports.FactsService, mapSvc ports.MapService, nav ports.Navigator, allowedOrigins []string) *WSManager {
	return websocket.NewWSManager(facts, mapSvc, nav, allowedOrigins)
}
