package handlers

import (
	"errors"
	"net/http"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/domain"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/repository"
	"gacha_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler bundles the economy services behind the HTTP surface. It maps
// plain identifiers and amounts onto operations and typed failures onto
// status codes; it never formats user-facing text beyond the error reason.
type Handler struct {
	DB             *pgxpool.Pool
	UserRepo       *repository.UserRepository
	LedgerRepo     *repository.TransactionRepository
	EconomyService *service.EconomyService
	GachaService   *service.GachaService
	RedeemService  *service.RedeemService
	PowerService   *service.PowerService
	BattleService  *service.BattleService
}

func NewHandler(db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator) *Handler {
	return &Handler{
		DB:             db,
		UserRepo:       repository.NewUserRepository(db),
		LedgerRepo:     repository.NewTransactionRepository(db),
		EconomyService: service.NewEconomyService(db, locks, inv),
		GachaService:   service.NewGachaService(db, locks, inv),
		RedeemService:  service.NewRedeemService(db, locks, inv),
		PowerService:   service.NewPowerService(db, locks, inv),
		BattleService:  service.NewBattleService(db, locks, inv),
	}
}

// fail translates service errors into responses. Validation failures map
// to client errors; a lock that stayed contended through the whole retry
// budget maps to 503 so callers know to try again.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrUsersNotFound),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrPowerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, locker.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operation is contended, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
