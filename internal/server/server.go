package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/musecraft/musecraft/internal/config"
	"github.com/musecraft/musecraft/internal/core"
	"github.com/musecraft/musecraft/internal/core/graph"
	"github.com/musecraft/musecraft/internal/core/model"
	"github.com/musecraft/musecraft/internal/core/suggest"
	"github.com/musecraft/musecraft/internal/driver"
	"github.com/musecraft/musecraft/internal/lastfm"
	"github.com/musecraft/musecraft/internal/llm"
	"github.com/musecraft/musecraft/internal/store"
)

type Server struct {
	Fusion *core.Fusion
	Store  *store.GraphStore
	LastFM *lastfm.Client
	Config *config.Config
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyEnvOverrides(cfg)

	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}

	st := store.NewGraphStore(d)
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Printf("Warning: schema setup incomplete: %v", err)
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	fm := lastfm.NewClient(cfg.LastFM.APIKey, cfg.LastFM.BaseURL,
		time.Duration(cfg.LastFM.TimeoutSeconds)*time.Second, cfg.LastFM.RatePerSecond)

	searcher := graph.NewSearcher(fm, graph.Options{
		SimilarLimit: cfg.Fusion.SimilarLimit,
		CacheSize:    cfg.Fusion.CacheSize,
		CacheTTL:     time.Duration(cfg.Fusion.CacheTTLMinutes) * time.Minute,
		Parallelism:  cfg.Fusion.Parallelism,
	})
	suggester := suggest.NewSuggester(llmClient, cfg.Prompts)

	fusion := core.NewFusion(st, st, searcher, suggester, fm)
	fusion.MaxDepth = cfg.Fusion.MaxDepth
	fusion.MaxLLMAttempts = cfg.Fusion.MaxLLMAttempts

	return &Server{
		Fusion: fusion,
		Store:  st,
		LastFM: fm,
		Config: cfg,
	}
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		cfg.LastFM.APIKey = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}

	if cfg.Memgraph.URI == "" {
		cfg.Memgraph.URI = "bolt://localhost:7687"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	general := NewRateLimiter(s.Config.RateLimit.GeneralPerMinute)
	combine := NewRateLimiter(s.Config.RateLimit.CombinePerMinute)

	api := r.Group("/api", general.Middleware())
	api.GET("/elements", s.ListElements)
	api.POST("/elements", s.CreateElement)
	api.GET("/elements/lookup", s.LookupElement)
	api.GET("/artist/:name", s.GetArtist)
	api.POST("/combine", combine.Middleware(), s.Combine)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

type CombineRequest struct {
	ElementA string `json:"elementA"`
	ElementB string `json:"elementB"`
}

func (s *Server) Combine(c *gin.Context) {
	var req CombineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID := c.GetHeader("X-User-ID")

	result, err := s.Fusion.Combine(c.Request.Context(), userID, req.ElementA, req.ElementB)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrMissingElement), errors.Is(err, core.ErrSelfCombination):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, core.ErrElementNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to combine: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to combine elements"})
		}
		return
	}

	if result.NoMatch {
		c.JSON(http.StatusOK, gin.H{"error": "No valid result found", "noMatch": true})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListElements(c *gin.Context) {
	elements, err := s.Store.ListElements(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list elements: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list elements"})
		return
	}
	c.JSON(http.StatusOK, elements)
}

type CreateElementRequest struct {
	Name string            `json:"name"`
	Type model.ElementType `json:"type"`
}

func (s *Server) CreateElement(c *gin.Context) {
	var req CreateElementRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	name := strings.TrimSpace(req.Name)
	elemType := req.Type
	if elemType == "" {
		elemType = model.TypeArtist
	}

	ctx := c.Request.Context()
	if existing, err := s.Store.GetElementByName(ctx, name); err == nil && existing != nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	// Canonicalize artist names against lastfm before storing.
	if elemType == model.TypeArtist {
		if validated := s.resolveArtist(ctx, name); validated != nil {
			name = validated.Name
			if existing, err := s.Store.GetElementByName(ctx, name); err == nil && existing != nil {
				c.JSON(http.StatusOK, existing)
				return
			}
		}
	}

	element := &model.Element{
		ID:          uuid.New().String(),
		Name:        name,
		Type:        elemType,
		SearchQuery: name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.SaveElement(ctx, element); err != nil {
		log.Printf("Failed to create element: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create element"})
		return
	}
	c.JSON(http.StatusOK, element)
}

func (s *Server) LookupElement(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	if validated := s.resolveArtist(c.Request.Context(), name); validated != nil {
		c.JSON(http.StatusOK, gin.H{"name": validated.Name, "listeners": validated.Listeners})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": nil})
}

func (s *Server) GetArtist(c *gin.Context) {
	info, err := s.LastFM.GetArtist(c.Request.Context(), c.Param("name"))
	if err != nil {
		log.Printf("Artist lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lookup failed"})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artist not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// resolveArtist tries exact lookup then fuzzy search; nil means the
// name could not be confirmed.
func (s *Server) resolveArtist(ctx context.Context, name string) *model.ArtistInfo {
	info, err := s.LastFM.GetArtist(ctx, name)
	if err == nil && info != nil {
		return info
	}
	info, err = s.LastFM.SearchArtist(ctx, name)
	if err != nil {
		return nil
	}
	return info
}
