package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/sale"
)

// APIOptions parameterise the launchpad API fetcher.
type APIOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// API fetches sale snapshots from the launchpad backend.
type API struct {
	opts    APIOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewAPI constructs a sale fetcher.
func NewAPI(opts APIOptions, logger zerolog.Logger) *API {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &API{
		opts:    opts,
		logger:  logger.With().Str("component", "sale_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// FetchSale retrieves and decodes one sale snapshot.
func (a *API) FetchSale(ctx context.Context, saleAddress string) (sale.Config, error) {
	if a.baseURL == "" {
		return sale.Config{}, errors.New("launchpad api base url not configured")
	}
	if saleAddress == "" {
		return sale.Config{}, errors.New("sale address required")
	}

	endpoint := fmt.Sprintf("%s/sale/%s", a.baseURL, saleAddress)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return sale.Config{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(a.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return sale.Config{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return sale.Config{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return sale.Config{}, fmt.Errorf("launchpad api error (%d)", resp.StatusCode)
	}

	var envelope saleResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return sale.Config{}, fmt.Errorf("decode sale payload: %w", err)
	}
	if !envelope.Success {
		return sale.Config{}, errors.New("launchpad api returned success=false")
	}

	return envelope.Data.toConfig()
}

type saleResponse struct {
	Success bool     `json:"success"`
	Data    saleData `json:"data"`
}

type saleData struct {
	Address string `json:"address"`
	Info    struct {
		MinBuy    string `json:"minbuy"`
		MaxBuy    string `json:"maxbuy"`
		SoftCap   string `json:"softcap"`
		Raised    string `json:"raised"`
		Owner     string `json:"saleOwner"`
		IsPublic  bool   `json:"isPublic"`
		Finished  bool   `json:"isFinished"`
		SaleStart int64  `json:"saleStart"`
		SaleEnd   int64  `json:"saleEnd"`
	} `json:"info"`
	Round struct {
		Round1 int64 `json:"round1"`
		Public int64 `json:"public"`
		Start  int64 `json:"start"`
		End    int64 `json:"end"`
	} `json:"round"`
	Token struct {
		Address     string `json:"address"`
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		Decimals    uint8  `json:"decimals"`
		TotalSupply string `json:"totalSupply"`
	} `json:"token"`
}

func (d saleData) toConfig() (sale.Config, error) {
	minBuy, err := parseWei("minbuy", d.Info.MinBuy)
	if err != nil {
		return sale.Config{}, err
	}
	maxBuy, err := parseWei("maxbuy", d.Info.MaxBuy)
	if err != nil {
		return sale.Config{}, err
	}
	softCap, err := parseWei("softcap", d.Info.SoftCap)
	if err != nil {
		return sale.Config{}, err
	}
	raised, err := parseWei("raised", d.Info.Raised)
	if err != nil {
		return sale.Config{}, err
	}

	supply := decimal.Zero
	if d.Token.TotalSupply != "" {
		supply, err = decimal.NewFromString(d.Token.TotalSupply)
		if err != nil {
			return sale.Config{}, fmt.Errorf("parse totalSupply: %w", err)
		}
	}

	cfg := sale.Config{
		Address:         common.HexToAddress(d.Address),
		Owner:           common.HexToAddress(d.Info.Owner),
		MinContribution: minBuy,
		MaxContribution: maxBuy,
		SoftCap:         softCap,
		Raised:          raised,
		IsPublic:        d.Info.IsPublic,
		Finished:        d.Info.Finished,
		SaleStart:       d.Info.SaleStart,
		SaleEnd:         d.Info.SaleEnd,
		Token: sale.TokenMeta{
			Address:     common.HexToAddress(d.Token.Address),
			Name:        d.Token.Name,
			Symbol:      d.Token.Symbol,
			Decimals:    d.Token.Decimals,
			TotalSupply: supply,
		},
	}

	cfg.Rounds = buildRounds(d)
	return cfg, nil
}

// buildRounds derives the eligibility windows. A zero round1 means the sale
// never had a whitelist window; the whole span is public.
func buildRounds(d saleData) []sale.Round {
	publicStart := d.Round.Public
	if publicStart == 0 {
		publicStart = d.Info.SaleStart
	}

	var rounds []sale.Round
	if d.Round.Round1 != 0 {
		rounds = append(rounds, sale.Round{
			Kind:  sale.RoundWhitelist,
			Start: d.Round.Round1,
			End:   publicStart,
		})
	}
	rounds = append(rounds, sale.Round{
		Kind:  sale.RoundPublic,
		Start: publicStart,
		End:   d.Info.SaleEnd,
	})
	return rounds
}

func parseWei(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return parsed, nil
}

var _ SaleFetcher = (*API)(nil)
