package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/07-main-teamproject/backend/models"
)

type stubLookup struct {
	results   []models.FoodCandidate
	searchErr error
}

func (s *stubLookup) Search(context.Context, string, int, int) ([]models.FoodCandidate, error) {
	return s.results, s.searchErr
}

func (s *stubLookup) FetchByID(context.Context, string) (*models.FoodCandidate, error) {
	return nil, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func foodInfoStatus(lookup *stubLookup, query string) int {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/food/info?query="+query, nil)

	NewFoodController(lookup).Info(c)
	return w.Code
}

func TestFoodInfo_RequiresQuery(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, foodInfoStatus(&stubLookup{}, ""))
}

func TestFoodInfo_DeadlineMapsToGatewayTimeout(t *testing.T) {
	lookup := &stubLookup{searchErr: fmt.Errorf("search %q: %w", "milk", context.DeadlineExceeded)}
	assert.Equal(t, http.StatusGatewayTimeout, foodInfoStatus(lookup, "milk"))
}

func TestFoodInfo_NetworkTimeoutMapsToGatewayTimeout(t *testing.T) {
	lookup := &stubLookup{searchErr: fmt.Errorf("search %q: %w", "milk", &url.Error{
		Op:  "Get",
		URL: "https://world.openfoodfacts.org/cgi/search.pl",
		Err: timeoutErr{},
	})}
	assert.Equal(t, http.StatusGatewayTimeout, foodInfoStatus(lookup, "milk"))
}

func TestFoodInfo_OtherFailureMapsToBadGateway(t *testing.T) {
	lookup := &stubLookup{searchErr: fmt.Errorf("search %q: connection refused", "milk")}
	assert.Equal(t, http.StatusBadGateway, foodInfoStatus(lookup, "milk"))
}

func TestFoodInfo_NoResultsIsNotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, foodInfoStatus(&stubLookup{}, "milk"))
}

func TestFoodInfo_ReturnsCandidates(t *testing.T) {
	lookup := &stubLookup{results: []models.FoodCandidate{{ExternalID: "111", Name: "milk"}}}
	assert.Equal(t, http.StatusOK, foodInfoStatus(lookup, "milk"))
}
