package webapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	blink "github.com/blinkmojo/blink/pkg"
)

var httpCodeForError = map[blink.ErrorCode]int{
	blink.BadRequest:      400,
	blink.DecodeError:     400,
	blink.PrivacyViolated: 400,
	blink.CurryError:      400,
	blink.SigningError:    400,
	blink.InvalidMix:      400,
	blink.CostExceeded:    422,
	blink.EvalError:       422,
	blink.NotFound:        404,
	blink.AlreadyExists:   409,
	blink.AlreadyBuilt:    409,
	blink.NotAvailable:    503,
	blink.PuzzleLoadError: 500,
	blink.UnknownError:    500,
}

func HttpStatusForError(code blink.ErrorCode) int {
	status, found := httpCodeForError[code]
	if !found {
		status = http.StatusInternalServerError
	}
	return status
}

func sendResponse(w http.ResponseWriter, payload any) {
	// note: w.Header after this, so we can call sendError
	b, err := json.Marshal(payload)
	if err != nil {
		sendErrorResponse(w, http.StatusInternalServerError, "marshal", fmt.Sprintf("in json.Marshal: %s", err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store") // do not cache (Browsers cache GET forever by default)
	w.Write(b)
}

func sendBadRequest(w http.ResponseWriter, message string) {
	sendErrorResponse(w, http.StatusBadRequest, blink.BadRequest, message)
}

func sendError(w http.ResponseWriter, where string, err error) {
	code := blink.CodeOf(err)
	message := fmt.Sprintf("%s: %s", where, err.Error())
	sendErrorResponse(w, HttpStatusForError(code), code, message)
}

func sendErrorResponse(w http.ResponseWriter, statusCode int, code blink.ErrorCode, message string) {
	log.Printf("[!] %s: %s\n", code, message)
	// would prefer to use json.Marshal, but this avoids the need
	// to handle encoding errors arising from json.Marshal itself!
	payload := fmt.Sprintf("{\"error\":{\"code\":%q,\"message\":%q}}", code, message)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store") // do not cache (Browsers cache GET forever by default)
	w.WriteHeader(statusCode)
	w.Write([]byte(payload))
}

// queryInt reads an optional integer query parameter within [min, max].
func queryInt(r *http.Request, name string, def, min, max int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}
