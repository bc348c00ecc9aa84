// Package fakebackend is an in-process implementation of the document QA REST
// API used by tests. It keeps users and collections in memory, hashes
// passwords with bcrypt and issues HS256 tokens.
package fakebackend

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"violet-client/internal/model"
)

const APIPrefix = "/api"

type Failure struct {
	Status int
	Detail interface{}
}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	secret       []byte
	users        map[string]*user
	staticTokens map[string]string
	loginToken   string
	nextUserID   int64
	nextCollID   int64
	collections  []*model.Collection
	insights     map[int64]*model.Insights
	tables       map[int64][]model.TableInfo
	calls        map[string]int
	failures     map[string]Failure
	gates        map[string]chan struct{}
	uploads      []UploadRecord
	chats        []ChatRecord
}

type user struct {
	id       int64
	username string
	hash     []byte
}

// UploadRecord is what the server received for one upload call.
type UploadRecord struct {
	CollectionName string
	FileNames      []string
	LLMProvider    string
	LLMModel       string
}

type ChatRecord struct {
	CollectionID int64
	Question     string
}

// New starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:       []byte("fake-backend-secret"),
		users:        make(map[string]*user),
		staticTokens: make(map[string]string),
		insights:     make(map[int64]*model.Insights),
		tables:       make(map[int64][]model.TableInfo),
		calls:        make(map[string]int),
		failures:     make(map[string]Failure),
		gates:        make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the value clients should use as their API base.
func (s *Server) BaseURL() string {
	return s.URL + APIPrefix
}

func (s *Server) AddUser(username, password string) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	s.users[username] = &user{id: s.nextUserID, username: username, hash: hash}
	return s.nextUserID
}

// SetLoginToken makes the next successful logins return token verbatim. The
// token is accepted for the user that logged in with it.
func (s *Server) SetLoginToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginToken = token
}

// AddToken registers an opaque token for username.
func (s *Server) AddToken(token, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staticTokens[token] = username
}

func (s *Server) AddCollection(owner, name string, insights *model.Insights) model.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[owner]
	if !ok {
		panic("fakebackend: unknown owner " + owner)
	}
	return s.addCollectionLocked(u, name, "openai", "gpt-4o-mini", insights)
}

func (s *Server) AddTables(collectionID int64, tables []model.TableInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[collectionID] = tables
}

func (s *Server) HasCollection(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Calls counts the requests received on path, e.g. "GET /api/app/collections".
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// FailNext makes the next request on key answer with status and detail.
func (s *Server) FailNext(key string, status int, detail interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = Failure{Status: status, Detail: detail}
}

// Hold blocks the next request on key until the returned release func runs.
// entered is closed once that request has arrived.
func (s *Server) Hold(key string) (entered <-chan struct{}, release func()) {
	gate := make(chan struct{})
	arrived := make(chan struct{})
	s.mu.Lock()
	s.gates[key] = gate
	s.gates[key+"#arrived"] = arrived
	s.mu.Unlock()

	var once sync.Once
	return arrived, func() { once.Do(func() { close(gate) }) }
}

func (s *Server) Uploads() []UploadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]UploadRecord(nil), s.uploads...)
}

func (s *Server) Chats() []ChatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRecord(nil), s.chats...)
}

func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.intercept())

	api := router.Group(APIPrefix)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/register", s.register)

	appGroup := api.Group("/app")
	appGroup.GET("/llm-providers", s.providers)

	secured := appGroup.Group("")
	secured.Use(s.authJWT())
	secured.GET("/collections", s.listCollections)
	secured.DELETE("/collections", s.deleteAllCollections)
	secured.DELETE("/collections/:id", s.deleteCollection)
	secured.GET("/collections/:id/tables", s.listTables)
	secured.GET("/insights/:id", s.getInsights)
	secured.POST("/upload", s.upload)
	secured.POST("/chat", s.chat)
	return router
}

// intercept counts calls and applies queued failures and holds.
func (s *Server) intercept() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path

		s.mu.Lock()
		s.calls[key]++
		failure, failing := s.failures[key]
		delete(s.failures, key)
		gate := s.gates[key]
		arrived := s.gates[key+"#arrived"]
		delete(s.gates, key)
		delete(s.gates, key+"#arrived")
		s.mu.Unlock()

		if gate != nil {
			close(arrived)
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if failing {
			c.AbortWithStatusJSON(failure.Status, gin.H{"detail": failure.Detail})
			return
		}
		c.Next()
	}
}

func (s *Server) indexLocked(id int64) int {
	for i, coll := range s.collections {
		if coll.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) addCollectionLocked(u *user, name, provider, llmModel string, insights *model.Insights) model.Collection {
	s.nextCollID++
	coll := &model.Collection{
		ID:                   s.nextCollID,
		Name:                 name,
		OwnerID:              u.id,
		VectorStoreSessionID: "vs-" + name,
		LLMProvider:          provider,
		LLMModel:             llmModel,
	}
	s.collections = append(s.collections, coll)
	if insights != nil {
		s.insights[coll.ID] = insights.Clone()
	}
	return *coll
}

func detail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}
