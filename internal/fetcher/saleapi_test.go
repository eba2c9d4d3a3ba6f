package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/sale"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchSaleMissingConfig(t *testing.T) {
	api := NewAPI(APIOptions{}, noopLogger())
	if _, err := api.FetchSale(context.Background(), "0xabc"); err == nil {
		t.Fatal("缺少 base url 时应返回错误")
	}

	api = NewAPI(APIOptions{BaseURL: "http://localhost"}, noopLogger())
	if _, err := api.FetchSale(context.Background(), ""); err == nil {
		t.Fatal("缺少 sale 地址应报错")
	}
}

func TestFetchSaleHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	api := NewAPI(APIOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := api.FetchSale(context.Background(), "0xabc"); err == nil {
		t.Fatal("HTTP 404 应返回错误")
	}
}

func TestFetchSaleSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/sale/0xabc") {
			t.Fatalf("路径应包含 sale 地址, 实际 %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"address": "0x00000000000000000000000000000000000000aa",
				"info": map[string]any{
					"minbuy":    "100000000000000000",
					"maxbuy":    "5000000000000000000",
					"softcap":   "50000000000000000000",
					"raised":    "60000000000000000000",
					"saleOwner": "0x00000000000000000000000000000000000000bb",
					"isPublic":  false,
					"saleStart": 1000,
					"saleEnd":   3000,
				},
				"round": map[string]any{
					"round1": 1000,
					"public": 2000,
					"start":  1000,
					"end":    3000,
				},
				"token": map[string]any{
					"name":        "UpToken",
					"symbol":      "UP",
					"decimals":    18,
					"totalSupply": "1000000",
				},
			},
		})
	}))
	defer srv.Close()

	api := NewAPI(APIOptions{BaseURL: srv.URL, Timeout: time.Second, UserAgent: "test"}, noopLogger())
	cfg, err := api.FetchSale(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}

	if !cfg.MinContribution.Equal(sale.ToWei(decimal.RequireFromString("0.1"))) {
		t.Fatalf("minbuy 解析错误: %s", cfg.MinContribution)
	}
	if cfg.Token.Name != "UpToken" {
		t.Fatalf("token 名称解析错误: %s", cfg.Token.Name)
	}
	if len(cfg.Rounds) != 2 {
		t.Fatalf("期望 2 个 round 窗口, 实际 %d", len(cfg.Rounds))
	}
	if cfg.Rounds[0].Kind != sale.RoundWhitelist || cfg.Rounds[0].End != 2000 {
		t.Fatalf("whitelist 窗口不正确: %+v", cfg.Rounds[0])
	}
	if cfg.PublicOnly() {
		t.Fatal("带 whitelist 窗口且未标记 public 的 sale 不应为 PublicOnly")
	}
}

func TestFetchSaleSuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	api := NewAPI(APIOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := api.FetchSale(context.Background(), "0xabc"); err == nil {
		t.Fatal("success=false 应报错")
	}
}

func TestBuildRoundsPublicOnly(t *testing.T) {
	var d saleData
	d.Info.SaleStart = 1000
	d.Info.SaleEnd = 2000

	rounds := buildRounds(d)
	if len(rounds) != 1 {
		t.Fatalf("期望仅 1 个 public 窗口, 实际 %d", len(rounds))
	}
	if rounds[0].Kind != sale.RoundPublic || rounds[0].Start != 1000 || rounds[0].End != 2000 {
		t.Fatalf("public 窗口不正确: %+v", rounds[0])
	}
}
