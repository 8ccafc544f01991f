package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pix-storefront/internal/config"
	"pix-storefront/internal/model"
)

func newTestEnterprise(t *testing.T, h http.HandlerFunc) EnterpriseClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewEnterpriseClient(&config.Enterprise{BaseApiURL: srv.URL + "/enterprise", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestEnterpriseListUsersSendsTokenAndParams(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enterprise/users.php", r.URL.Path)
		assert.Equal(t, "Bearer merchant-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "list", q.Get("action"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("per_page"))
		assert.Equal(t, "ana", q.Get("search"))

		writeJSON(w, http.StatusOK, `{"success":true,"users":[{"id":1,"username":"ana","balance":"12.50","total_gasto":99}],
			"pagination":{"total":21,"page":2,"per_page":20,"total_pages":2}}`)
	})

	page, err := c.ListUsers(context.Background(), "merchant-token", model.ListParams{Page: 2, PerPage: 20, Search: "ana"})
	require.NoError(t, err)
	rows := page.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "ana", rows[0].Username)
	assert.Equal(t, "12.5", rows[0].Balance.String())
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestEnterpriseRowsFallbackToData(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":9,"purchase_code":"P9","price_paid":"10.00","payment_status":"paid"}],
			"pagination":{"total":1,"page":1,"per_page":20,"total_pages":1}}`)
	})

	page, err := c.ListTransactions(context.Background(), "tok", model.ListParams{Status: "paid"})
	require.NoError(t, err)
	require.Len(t, page.Rows(), 1)
	assert.Equal(t, "P9", page.Rows()[0].PurchaseCode)
}

func TestEnterpriseUnauthorized(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"error":"Token expirado"}`)
	})

	_, err := c.DashboardStats(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestEnterpriseBusinessFailureUsesErrorField(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"error":"Produto possui vendas"}`)
	})

	err := c.DeleteProduct(context.Background(), "tok", 3)
	require.Error(t, err)
	assert.True(t, IsBusiness(err))
	assert.Equal(t, "Produto possui vendas", Message(err))
}

func TestEnterpriseLoginRequiresToken(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "login", r.URL.Query().Get("action"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "owner@example.com", body["email"])
		writeJSON(w, http.StatusOK, `{"success":true,"merchant":{"id":1,"name":"Loja"}}`)
	})

	_, err := c.Login(context.Background(), "owner@example.com", "pw")
	require.Error(t, err)
	assert.True(t, IsBusiness(err))
}

func TestEnterpriseUpdateProductSendsID(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "update", r.URL.Query().Get("action"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 4, body["id"])
		assert.Equal(t, "Novo nome", body["name"])
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Produto atualizado"}`)
	})

	err := c.UpdateProduct(context.Background(), "tok", &model.ProductInput{ID: 4, Name: "Novo nome"})
	require.NoError(t, err)
}

func TestEnterpriseFinancialReportParams(t *testing.T) {
	c := newTestEnterprise(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "relatorio_financeiro", q.Get("action"))
		assert.Equal(t, "03", q.Get("mes"))
		assert.Equal(t, "2026", q.Get("ano"))
		writeJSON(w, http.StatusOK, `{"success":true,"periodo":{"mes":"03","ano":"2026"},
			"resumo":{"total_transacoes":4,"receita_confirmada":"120.00"}}`)
	})

	rep, err := c.FinancialReport(context.Background(), "tok", "03", "2026")
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Summary.TotalTransactions)
	assert.Equal(t, "120", rep.Summary.ConfirmedRevenue.String())
}
