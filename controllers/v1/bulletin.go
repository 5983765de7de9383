package v1

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phoaar/cacv-bulletin-automation/db"
	"github.com/phoaar/cacv-bulletin-automation/models"
	"github.com/phoaar/cacv-bulletin-automation/service"
)

// Runner runs the bulletin pipeline once.
type Runner interface {
	Run(ctx context.Context) (service.Summary, error)
}

// RunLister reads run history.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]models.RunRecord, error)
}

type BulletinController struct {
	runner    Runner
	history   RunLister
	outputDir string
	token     string
	logger    *zap.Logger

	running sync.Mutex
}

// NewBulletinController wires the webhook handlers. history may be nil when
// no database is configured.
func NewBulletinController(runner Runner, history RunLister, outputDir, token string, logger *zap.Logger) *BulletinController {
	return &BulletinController{
		runner:    runner,
		history:   history,
		outputDir: outputDir,
		token:     token,
		logger:    logger,
	}
}

func (ctl *BulletinController) authorized(c *gin.Context) bool {
	got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || ctl.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(ctl.token)) == 1
}

// POST /api/v1/generate
func (ctl *BulletinController) Generate(c *gin.Context) {
	if !ctl.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
		return
	}
	if !ctl.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "a bulletin run is already in progress"})
		return
	}
	defer ctl.running.Unlock()

	ctl.logger.Info("Webhook triggered bulletin run", zap.String("remote", c.ClientIP()))
	sum, err := ctl.runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"run_id": sum.RunID,
			"status": sum.Status,
			"error":  err.Error(),
		})
		return
	}

	issues := sum.Issues
	if issues == nil {
		issues = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id": sum.RunID,
		"slug":   sum.Slug,
		"status": sum.Status,
		"issues": issues,
	})
}

// GET /api/v1/runs?limit=N
func (ctl *BulletinController) GetRuns(c *gin.Context) {
	if ctl.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history is not configured"})
		return
	}
	limit := db.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	runs, err := ctl.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

type bulletinFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	URL      string    `json:"url"`
}

// GET /api/v1/bulletins
func (ctl *BulletinController) GetBulletins(c *gin.Context) {
	entries, err := os.ReadDir(ctl.outputDir)
	if err != nil && !os.IsNotExist(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	files := []bulletinFile{}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".html" && ext != ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, bulletinFile{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
			URL:      "/bulletins/" + e.Name(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Modified.Equal(files[j].Modified) {
			return files[i].Name < files[j].Name
		}
		return files[i].Modified.After(files[j].Modified)
	})

	c.JSON(http.StatusOK, gin.H{
		"bulletins": files,
		"count":     len(files),
	})
}
