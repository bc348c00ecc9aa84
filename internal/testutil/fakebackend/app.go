package fakebackend

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"violet-client/internal/model"
)

type chatRequest struct {
	CollectionID int64  `json:"collection_id" binding:"required"`
	Question     string `json:"question" binding:"required"`
}

var providerList = []model.LLMProvider{
	{ID: "openai", Name: "OpenAI", Models: []string{"gpt-4o-mini", "gpt-4o"}, DefaultModel: "gpt-4o-mini"},
	{ID: "ollama", Name: "Ollama", Models: []string{"llama3"}, DefaultModel: "llama3"},
}

func (s *Server) providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": providerList})
}

func (s *Server) listCollections(c *gin.Context) {
	u := currentUser(c)
	s.mu.Lock()
	out := make([]model.Collection, 0, len(s.collections))
	for _, coll := range s.collections {
		if coll.OwnerID == u.id {
			out = append(out, *coll)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

// ownedCollection resolves the :id param and aborts unless it belongs to the caller.
func (s *Server) ownedCollection(c *gin.Context, id int64) (int, bool) {
	u := currentUser(c)
	idx := s.indexLocked(id)
	if idx < 0 || s.collections[idx].OwnerID != u.id {
		return -1, false
	}
	return idx, true
}

func parseID(c *gin.Context, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"path", "collection_id"}, "msg": "value is not a valid integer", "type": "type_error.integer"},
		}})
		return 0, false
	}
	return id, true
}

func (s *Server) deleteCollection(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}
	s.mu.Lock()
	idx, owned := s.ownedCollection(c, id)
	if owned {
		s.collections = append(s.collections[:idx], s.collections[idx+1:]...)
		delete(s.insights, id)
		delete(s.tables, id)
	}
	s.mu.Unlock()

	if !owned {
		detail(c, http.StatusNotFound, "Collection not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}

func (s *Server) deleteAllCollections(c *gin.Context) {
	u := currentUser(c)
	s.mu.Lock()
	kept := s.collections[:0]
	deleted := 0
	for _, coll := range s.collections {
		if coll.OwnerID == u.id {
			delete(s.insights, coll.ID)
			delete(s.tables, coll.ID)
			deleted++
			continue
		}
		kept = append(kept, coll)
	}
	s.collections = kept
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Successfully deleted %d collection(s)", deleted),
		"deleted_count": deleted,
	})
}

func (s *Server) getInsights(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}
	s.mu.Lock()
	_, owned := s.ownedCollection(c, id)
	insights := s.insights[id].Clone()
	s.mu.Unlock()

	if !owned {
		detail(c, http.StatusNotFound, "Collection not found")
		return
	}
	if insights == nil {
		detail(c, http.StatusNotFound, "Insights not available")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection_id": id, "insights": insights})
}

func (s *Server) listTables(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}
	s.mu.Lock()
	_, owned := s.ownedCollection(c, id)
	tables := append([]model.TableInfo{}, s.tables[id]...)
	s.mu.Unlock()

	if !owned {
		detail(c, http.StatusNotFound, "Collection not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection_id": id, "tables": tables})
}

func (s *Server) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	name := strings.TrimSpace(c.PostForm("collection_name"))
	files := form.File["files"]
	if name == "" || len(files) == 0 {
		detail(c, http.StatusBadRequest, "files and collection_name are required")
		return
	}

	names := make([]string, 0, len(files))
	for _, fh := range files {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			detail(c, http.StatusBadRequest, "Only PDF files are allowed: "+fh.Filename)
			return
		}
		names = append(names, fh.Filename)
	}

	provider := c.DefaultPostForm("llm_provider", "openai")
	llmModel := c.DefaultPostForm("llm_model", "gpt-4o-mini")
	insights := &model.Insights{
		Summary:            "Summary of " + name,
		KeyConcepts:        []string{name},
		SuggestedQuestions: []string{"What is " + name + " about?"},
		DocumentStats:      map[string]int{"files": len(names)},
	}

	u := currentUser(c)
	s.mu.Lock()
	coll := s.addCollectionLocked(u, name, provider, llmModel, insights)
	s.uploads = append(s.uploads, UploadRecord{
		CollectionName: name,
		FileNames:      names,
		LLMProvider:    provider,
		LLMModel:       llmModel,
	})
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"collection":       coll,
		"uploaded_files":   names,
		"processing_stats": gin.H{"total_chunks": len(names) * 4},
		"insights":         insights,
	})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body", "question"}, "msg": "field required", "type": "value_error.missing"},
		}})
		return
	}

	s.mu.Lock()
	idx, owned := s.ownedCollection(c, req.CollectionID)
	var coll model.Collection
	if owned {
		coll = *s.collections[idx]
		s.chats = append(s.chats, ChatRecord{CollectionID: req.CollectionID, Question: req.Question})
	}
	s.mu.Unlock()

	if !owned {
		detail(c, http.StatusNotFound, "Collection not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer": Answer(req.Question),
		"sources": []model.Source{{
			Source:         coll.Name + ".pdf",
			Page:           1,
			FilePath:       "/data/" + coll.Name + ".pdf",
			RelevanceScore: 0.92,
			TextPreview:    "excerpt for " + req.Question,
		}},
		"type": "rag",
	})
}

// Answer is the deterministic reply the server gives to question.
func Answer(question string) string {
	return "Answer to: " + question
}
