package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songslide/songslide/internal/data"
	apperrors "github.com/songslide/songslide/internal/errors"
	"github.com/songslide/songslide/internal/ranking"
	"github.com/songslide/songslide/internal/search"
	"github.com/songslide/songslide/internal/songs"
)

// ErrorResponse is the body of every failed request. Hint is set for
// validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func respondError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) searchSongs(c *gin.Context) {
	c.Header("Cache-Control", "no-store, max-age=0")
	query := c.Query("q")
	include := search.ParseIncludeSuggestions(c.Query("includeSuggestions"))

	res, err := s.searcher.Search(c.Request.Context(), query, include)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getWeights(c *gin.Context) {
	p, err := s.store.LatestWeights(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, ranking.MergeWithDefaults(p))
}

func (s *Server) postWeights(c *gin.Context) {
	var p data.PartialWeights
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	w, err := ranking.ParseWeights(&p)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	stored, err := s.store.InsertWeights(c.Request.Context(), w)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if s.engine != nil {
		s.engine.InvalidateWeights()
	}
	for _, fn := range s.invalidate {
		fn()
	}
	s.logger.Info("search weights updated", "id", stored.ID)
	c.JSON(http.StatusOK, stored)
}

func (s *Server) createSong(c *gin.Context) {
	var p songs.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Hint: songs.Hint})
		return
	}
	song, err := songs.Validate(p)
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message, Hint: ve.Hint})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Hint: songs.Hint})
		return
	}
	created, err := s.store.InsertSong(c.Request.Context(), song)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Hint:  "Check the database settings and restart the server.",
		})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getSong(c *gin.Context) {
	song, err := s.store.GetSong(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if song == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "song not found"})
		return
	}
	c.JSON(http.StatusOK, song)
}
