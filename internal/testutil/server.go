package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthUser and AuthPassword are accepted by /http_auth.
	AuthUser     = "test"
	AuthPassword = "password"
	// AuthRealm is the realm announced by /http_auth.
	AuthRealm = "Protected"

	sessionCookie = "twill_session"
)

type session struct {
	visits int
	user   string
}

// App is a small stateful web application exercising the browser: sessions
// kept in cookies, login forms, checkboxes, meta refreshes, broken markup and
// basic auth.
type App struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer starts the fixture application and closes it when the test ends.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewApp().Router())
	t.Cleanup(srv.Close)
	return srv
}

// NewApp creates the fixture application.
func NewApp() *App {
	return &App{sessions: make(map[string]*session)}
}

// Router returns the gin engine serving the application.
func (a *App) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/", a.index)
	r.GET("/increment", a.increment)
	r.GET("/logout", a.logout)
	r.Any("/login", a.login)
	r.Any("/multisubmitform", a.multiSubmit)
	r.Any("/test_checkboxes", a.checkboxes)
	r.Any("/test_simple_checkbox", a.simpleCheckbox)
	r.Any("/display_post", displayForm)
	r.GET("/display_get", displayForm)
	r.POST("/echo_body", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		html(c, http.StatusOK, string(body))
	})
	r.Any("/upload_file", uploadFile)
	r.GET("/http_auth", httpAuth)
	r.GET("/plaintext", func(c *gin.Context) { c.String(http.StatusOK, "hello, world") })
	r.GET("/redirect", func(c *gin.Context) { c.Redirect(http.StatusFound, "/plaintext") })
	r.GET("/status/:code", func(c *gin.Context) {
		var code int
		_, _ = fmt.Sscanf(c.Param("code"), "%d", &code)
		html(c, code, fmt.Sprintf("<title>status %d</title>", code))
	})
	r.GET("/latin1", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=iso-8859-1", []byte(latin1Page))
	})

	for path, page := range staticPages {
		page := page
		r.GET(path, func(c *gin.Context) { html(c, http.StatusOK, page) })
	}
	return r
}

func html(c *gin.Context, code int, body string) {
	c.Data(code, "text/html; charset=utf-8", []byte(body))
}

func (a *App) session(c *gin.Context) *session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id, err := c.Cookie(sessionCookie); err == nil {
		if s, ok := a.sessions[id]; ok {
			return s
		}
	}
	id := uuid.New().String()
	s := &session{}
	a.sessions[id] = s
	http.SetCookie(c.Writer, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	return s
}

func (a *App) message(c *gin.Context, s *session) {
	a.mu.Lock()
	visits, user := s.visits, s.user
	a.mu.Unlock()
	if user == "" {
		user = "guest"
	}
	html(c, http.StatusOK, fmt.Sprintf(indexPage, visits, user))
}

func (a *App) index(c *gin.Context) {
	a.message(c, a.session(c))
}

func (a *App) increment(c *gin.Context) {
	s := a.session(c)
	a.mu.Lock()
	s.visits++
	a.mu.Unlock()
	a.message(c, s)
}

func (a *App) logout(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		a.mu.Lock()
		delete(a.sessions, id)
		a.mu.Unlock()
	}
	http.SetCookie(c.Writer, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	c.Redirect(http.StatusFound, "/")
}

func (a *App) login(c *gin.Context) {
	s := a.session(c)
	if c.Request.Method == http.MethodPost {
		if c.PostForm("nosubmit2") != "" {
			c.String(http.StatusBadRequest, "wrong button")
			return
		}
		if username := c.PostForm("username"); username != "" {
			a.mu.Lock()
			s.user = username
			a.mu.Unlock()
			c.Redirect(http.StatusFound, "/")
			return
		}
	}
	html(c, http.StatusOK, loginPage)
}

func (a *App) multiSubmit(c *gin.Context) {
	var out strings.Builder
	if c.Request.Method == http.MethodPost {
		if c.PostForm("sub_a") != "" {
			out.WriteString("used_sub_a")
		}
		if c.PostForm("sub_b") != "" {
			out.WriteString("used_sub_b")
		}
		if ref := c.Request.Referer(); ref != "" {
			out.WriteString("<p>referer: " + ref)
		}
	}
	html(c, http.StatusOK, fmt.Sprintf(multiSubmitPage, out.String()))
}

func (a *App) checkboxes(c *gin.Context) {
	html(c, http.StatusOK, checkboxReport(c)+checkboxesPage)
}

func (a *App) simpleCheckbox(c *gin.Context) {
	html(c, http.StatusOK, checkboxReport(c)+simpleCheckboxPage)
}

func checkboxReport(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	values := c.PostFormArray("checkboxtest")
	if len(values) == 0 {
		return ""
	}
	return fmt.Sprintf("CHECKBOXTEST: ==%s==<p>\n", strings.Join(values, ","))
}

// displayForm echoes every submitted field, sorted by name.
func displayForm(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	form := c.Request.Form
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&out, "k: '''%s''' : '''%s'''<p>\n", k, strings.Join(form[k], ","))
	}
	html(c, http.StatusOK, out.String())
}

func uploadFile(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		html(c, http.StatusOK, uploadPage)
		return
	}
	fh, err := c.FormFile("upload")
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	html(c, http.StatusOK, fmt.Sprintf("FILE: %s TYPE: %s NOTE: %s BODY: %s",
		fh.Filename, fh.Header.Get("Content-Type"), c.PostForm("note"), data))
}

func httpAuth(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != AuthUser || pass != AuthPassword {
		c.Header("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", AuthRealm))
		html(c, http.StatusUnauthorized, "<title>Unauthorized</title>")
		return
	}
	html(c, http.StatusOK, "<title>Authorized</title>you made it!")
}
