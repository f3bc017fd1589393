package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aristath/stoxy/internal/autosave"
	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/aristath/stoxy/internal/state"
	"github.com/aristath/stoxy/internal/transfer"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, s.log, http.StatusOK, NewStateView(s.state.UserID(), s.state.Snapshot()))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, s.log, http.StatusOK, nonNil(s.state.Notifications()))
}

// StatusResponse describes connectivity and persistence health
type StatusResponse struct {
	Backend      string         `json:"backend"`
	Online       bool           `json:"online"`
	StorageKB    float64        `json:"storageKb"`
	LastSync     *time.Time     `json:"lastSync,omitempty"`
	Autosave     autosave.Stats `json:"autosave"`
	Market       string         `json:"market"`
	MarketIsOpen bool           `json:"marketOpen"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp StatusResponse

	health := s.gateway.Health(r.Context())
	resp.Backend = health.Data.Status
	resp.Online = !health.Failed() && health.Data.OK()

	if s.storage != nil {
		if kb, err := s.storage.SizeKB(); err == nil {
			resp.StorageKB = kb
		}
		if t, ok, err := s.storage.LastSync(); err == nil && ok {
			resp.LastSync = &t
		}
	}
	if s.flusher != nil {
		resp.Autosave = s.flusher.Stats()
	}

	s.state.Read(func(d *state.Data) {
		resp.Market = d.Market.Label
		resp.MarketIsOpen = d.Market.Open
	})
	modules.WriteJSON(w, s.log, http.StatusOK, resp)
}

// ReloadResponse reports the phases a reload went through and where each
// resource ended up coming from
type ReloadResponse struct {
	Phases  []reconciler.Phase                        `json:"phases"`
	Sources map[reconciler.Resource]reconciler.Source `json:"sources"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	outcome := s.reloader.Reload(r.Context())
	modules.WriteJSON(w, s.log, http.StatusOK, ReloadResponse{Phases: outcome.Phases, Sources: outcome.Sources})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.flusher.Flush(autosave.ReasonManual); err != nil {
		modules.WriteError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "State saved"})
}

// handleClearStorage drops cached snapshots. scope is all (default), portfolio or alerts.
// The in-memory state is untouched, so the next flush writes it back.
func (s *Server) handleClearStorage(w http.ResponseWriter, r *http.Request) {
	var err error
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "all":
		err = s.storage.ClearAll()
	case "portfolio":
		err = s.storage.ClearPortfolio()
	case "alerts":
		err = s.storage.ClearAlerts()
	default:
		modules.WriteError(w, s.log, http.StatusBadRequest, "unknown scope: "+scope)
		return
	}
	if err != nil {
		modules.WriteError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "Local store cleared"})
}

// SearchResponse combines the user's own matches with the backend's
type SearchResponse struct {
	Query    string                  `json:"query"`
	Local    []LocalMatch            `json:"local"`
	Remote   []stoxyapi.SearchResult `json:"remote"`
	Fallback bool                    `json:"fallback"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	resp := SearchResponse{
		Query:  q,
		Local:  SearchLocal(s.state.Snapshot(), q),
		Remote: []stoxyapi.SearchResult{},
	}
	if len([]rune(q)) >= MinLocalQueryLength {
		res := s.gateway.Search(r.Context(), q)
		resp.Remote = nonNil(res.Data)
		resp.Fallback = res.Fallback
	}
	modules.WriteJSON(w, s.log, http.StatusOK, resp)
}

// MarketResponse is every market panel in one payload
type MarketResponse struct {
	Indices    []stoxyapi.MarketIndex `json:"indices"`
	Movers     []stoxyapi.Quote       `json:"movers"`
	Crypto     []stoxyapi.Quote       `json:"crypto"`
	TopCryptos []stoxyapi.Quote       `json:"topCryptos"`
	News       []stoxyapi.NewsRecord  `json:"news"`
	Fallback   []string               `json:"fallback"` // panels served from snapshots
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := MarketResponse{Fallback: []string{}}

	var mu sync.Mutex
	var wg sync.WaitGroup
	fetch := func(name string, fn func(ctx context.Context) bool) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fallback := fn(ctx); fallback {
				mu.Lock()
				resp.Fallback = append(resp.Fallback, name)
				mu.Unlock()
			}
		}()
	}

	fetch("indices", func(ctx context.Context) bool {
		res := s.gateway.GetMarketIndices(ctx)
		resp.Indices = res.Data
		return res.Fallback
	})
	fetch("movers", func(ctx context.Context) bool {
		res := s.gateway.GetTopMovers(ctx)
		resp.Movers = res.Data
		return res.Fallback
	})
	fetch("crypto", func(ctx context.Context) bool {
		res := s.gateway.GetCryptoPrices(ctx)
		resp.Crypto = res.Data
		return res.Fallback
	})
	fetch("top_cryptos", func(ctx context.Context) bool {
		res := s.gateway.GetTopCryptos(ctx)
		resp.TopCryptos = res.Data
		return res.Fallback
	})
	fetch("news", func(ctx context.Context) bool {
		res := s.gateway.GetNews(ctx)
		resp.News = res.Data
		if !res.Failed() {
			news := make([]domain.NewsItem, 0, len(res.Data))
			for _, n := range res.Data {
				news = append(news, n.ToDomain())
			}
			s.state.Update(func(d *state.Data) { d.News = news })
		}
		return res.Fallback
	})
	wg.Wait()

	modules.WriteJSON(w, s.log, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.transfer.Export()
	if err != nil {
		s.log.Error().Err(err).Msg("Export failed")
		modules.WriteError(w, s.log, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.FileName(doc.ExportDate)+`"`)
	modules.WriteJSON(w, s.log, http.StatusOK, doc)
}

// ImportResponse lists the keys an import wrote
type ImportResponse struct {
	Imported []string `json:"imported"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	keys, err := s.transfer.Import(r.Context(), http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		s.log.Warn().Err(err).Msg("Import rejected")
		modules.WriteError(w, s.log, http.StatusBadRequest, err.Error())
		return
	}
	resp := ImportResponse{Imported: make([]string, 0, len(keys))}
	for _, k := range keys {
		resp.Imported = append(resp.Imported, string(k))
	}
	modules.WriteJSON(w, s.log, http.StatusOK, resp)
}
