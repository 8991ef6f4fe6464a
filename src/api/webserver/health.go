package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Health struct {
	db        *gorm.DB
	botStatus BotStatusFunc
}

func NewHealth(db *gorm.DB, botStatus BotStatusFunc) Health {
	return Health{db: db, botStatus: botStatus}
}

func (h Health) Health(c *gin.Context) {
	dbState := "ok"
	if err := h.pingDB(c.Request.Context()); err != nil {
		dbState = err.Error()
	}
	if dbState != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": dbState})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": dbState})
}

func (h Health) pingDB(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (h Health) Bot(c *gin.Context) {
	if h.botStatus == nil {
		c.JSON(http.StatusOK, gin.H{"running": false, "embedded": false})
		return
	}
	running, user := h.botStatus()
	c.JSON(http.StatusOK, gin.H{"running": running, "embedded": true, "user": user})
}

func (h Health) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
