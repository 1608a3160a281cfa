package webapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/blinkmojo/blink/pkg/conductor"
	"github.com/julienschmidt/httprouter"
)

// WebAPI implements conductor.Service
type WebAPI struct {
	api    blink.API
	config blink.Config
}

// interface guard ensures WebAPI implements conductor.Service
var _ conductor.Service = WebAPI{}

func NewWebAPI(config blink.Config, api blink.API) (WebAPI, error) {
	return WebAPI{api: api, config: config}, nil
}

func (t WebAPI) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		mux := t.createRouter()

		server := &http.Server{Addr: t.config.WebAPI.Bind + ":" + t.config.WebAPI.Port, Handler: mux}
		log.Printf("Blink API listening on %s:%s", t.config.WebAPI.Bind, t.config.WebAPI.Port)
		go func() {
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("HTTP server ListenAndServe: %v", err)
			}
		}()

		started <- true
		ctx := <-stop
		server.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

func (t WebAPI) createRouter() *httprouter.Router {
	mux := httprouter.New()

	// GET /puzzles -> [ {role, name, mod_hash, program, params}, .. ]
	mux.GET("/puzzles", t.listPuzzles)

	// POST { plan } /mix/validate -> { valid } or privacy-violation
	mux.POST("/mix/validate", t.validateMix)

	// POST { plan, public_keys } /mix/puzzle_hashes -> { puzzle_hashes }
	mux.POST("/mix/puzzle_hashes", t.puzzleHashes)

	// POST { plan, signers } /settlement -> { name, network, spend_bundle, created }
	mux.POST("/settlement", t.buildSettlement)

	// POST { program?, arg? } /puzzle/:name/run -> { cost, result, conditions }
	mux.POST("/puzzle/:name/run", t.runPuzzle)

	// GET /bundles ? cursor, limit -> { items, cursor }
	mux.GET("/bundles", t.listBundles)

	// GET /bundle/:name -> { name, network, spend_bundle, created }
	mux.GET("/bundle/:name", t.getBundle)

	// GET /bundle/:name/qr.png -> QR code of the bundle name
	mux.GET("/bundle/:name/qr.png", t.getBundleQR)

	return mux
}

func (t WebAPI) listPuzzles(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	sendResponse(w, t.api.ListPuzzles())
}

type ValidateMixResponse struct {
	Valid             bool   `json:"valid"`
	DecoyValueAmount  uint64 `json:"decoy_value_amount"`
	NeedsPrivacyValue uint64 `json:"needs_privacy_value"`
}

func (t WebAPI) validateMix(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var plan blink.MixPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		sendBadRequest(w, "invalid mix plan JSON: "+err.Error())
		return
	}
	if err := t.api.ValidateMix(plan); err != nil {
		sendError(w, "ValidateMix", err)
		return
	}
	sendResponse(w, ValidateMixResponse{true, plan.DecoyValueAmount, plan.NeedsPrivacyValue})
}

type PuzzleHashesResponse struct {
	PuzzleHashes [4]blink.Bytes32 `json:"puzzle_hashes"`
}

func (t WebAPI) puzzleHashes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req blink.LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendBadRequest(w, "invalid lock request JSON: "+err.Error())
		return
	}
	hashes, err := t.api.PuzzleHashes(req)
	if err != nil {
		sendError(w, "PuzzleHashes", err)
		return
	}
	sendResponse(w, PuzzleHashesResponse{hashes})
}

func (t WebAPI) buildSettlement(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req blink.SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendBadRequest(w, "invalid settlement request JSON: "+err.Error())
		return
	}
	rec, err := t.api.BuildSettlement(req)
	if err != nil {
		sendError(w, "BuildSettlement", err)
		return
	}
	sendResponse(w, rec)
}

type RunPuzzleRequest struct {
	Program string `json:"program"` // hex; empty to run the named template
	Arg     string `json:"arg"`     // serialized CLVM, hex; empty for the sample argument
}

type RunPuzzleResponse struct {
	Puzzle     string   `json:"puzzle"`
	Cost       uint64   `json:"cost"`
	Result     string   `json:"result"`
	Conditions []string `json:"conditions"`
}

func (t WebAPI) runPuzzle(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name := p.ByName("name")
	var req RunPuzzleRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendBadRequest(w, "invalid run request JSON: "+err.Error())
			return
		}
	}
	d, err := t.api.RunPuzzle(name, req.Program, req.Arg)
	if err != nil {
		sendError(w, "RunPuzzle", err)
		return
	}
	sendResponse(w, NewRunPuzzleResponse(d.Puzzle, d.Cost, d.Result, d.Conditions))
}

type ListBundlesResponse struct {
	Items  []blink.BundleRecord `json:"items"`
	Cursor int                  `json:"cursor"`
}

func (t WebAPI) listBundles(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// optional pagination: cursor comes from the previous response (or zero)
	cursor, ok := queryInt(r, "cursor", 0, 0, int(^uint(0)>>1))
	if !ok {
		sendBadRequest(w, "invalid cursor in URL")
		return
	}
	limit, ok := queryInt(r, "limit", 10, 1, 100)
	if !ok {
		sendBadRequest(w, "invalid limit in URL (1 to 100)")
		return
	}
	if t.api.Store == nil {
		sendErrorResponse(w, 503, blink.NotAvailable, "no store configured")
		return
	}
	items, next, err := t.api.Store.ListSpendBundles(cursor, limit)
	if err != nil {
		sendError(w, "ListSpendBundles", err)
		return
	}
	if items == nil {
		items = []blink.BundleRecord{}
	}
	sendResponse(w, ListBundlesResponse{items, next})
}

func (t WebAPI) bundleName(w http.ResponseWriter, p httprouter.Params) (blink.Bytes32, bool) {
	name, err := blink.ParseBytes32(p.ByName("name"))
	if err != nil {
		sendBadRequest(w, "invalid bundle name in URL")
		return name, false
	}
	return name, true
}

func (t WebAPI) getBundle(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name, ok := t.bundleName(w, p)
	if !ok {
		return
	}
	rec, err := t.api.GetSpendBundle(name)
	if err != nil {
		sendError(w, "GetSpendBundle", err)
		return
	}
	sendResponse(w, rec)
}

func (t WebAPI) getBundleQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name, ok := t.bundleName(w, p)
	if !ok {
		return
	}
	if _, err := t.api.GetSpendBundle(name); err != nil {
		sendError(w, "GetSpendBundle", err)
		return
	}
	qs := r.URL.Query()
	qr, err := GenerateQRCodePNG("0x"+name.String(), 512, qs.Get("fg"), qs.Get("bg"))
	if err != nil {
		sendError(w, "GenerateQRCodePNG", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	// a bundle never changes once stored
	w.Header().Set("Cache-Control", "max-age=900, immutable")
	w.Write(qr)
}
