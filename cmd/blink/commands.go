package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/blinkmojo/blink/pkg/address"
	"github.com/blinkmojo/blink/pkg/clvm"
	"github.com/blinkmojo/blink/pkg/puzzles"
)

/*
	These commands run the settlement engine locally, without a
	server or store. `bundle` is the exception: it calls the REST
	API of a running Blink server.
*/

type SubCommandArgs struct {
	RemoteServer string
}

// offlineAPI is an API with no store or bus.
func offlineAPI(c blink.Config) (blink.API, error) {
	set, err := puzzles.Shared()
	if err != nil {
		return blink.API{}, err
	}
	return blink.NewAPI(nil, nil, set, c)
}

func readJSON(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("%s: %v", path, err)
	}
	return nil
}

func ListPuzzles(w io.Writer) error {
	set, err := puzzles.Shared()
	if err != nil {
		return err
	}
	for _, t := range set.Templates() {
		fmt.Fprintf(w, "%-14s %s  params:", t.Name, t.ModHash())
		for _, p := range t.Params {
			fmt.Fprintf(w, " %s:%s", p.Name, p.Kind)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func ValidateMix(w io.Writer, path string, c blink.Config) error {
	var plan blink.MixPlan
	if err := readJSON(path, &plan); err != nil {
		return err
	}
	api, err := offlineAPI(c)
	if err != nil {
		return err
	}
	if err := api.ValidateMix(plan); err != nil {
		return err
	}
	if err := plan.CheckCoins(); err != nil {
		return err
	}
	fmt.Fprintf(w, "ok: decoy_value %s XCH covers needs_privacy %s XCH\n",
		blink.MojosToXCH(plan.DecoyValueAmount), blink.MojosToXCH(plan.NeedsPrivacyValue))
	return nil
}

func Settle(w io.Writer, path string, outFile string, c blink.Config) error {
	var req blink.SettlementRequest
	if err := readJSON(path, &req); err != nil {
		return err
	}
	api, err := offlineAPI(c)
	if err != nil {
		return err
	}
	rec, err := api.BuildSettlement(req)
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := os.WriteFile(outFile, rec.Bundle.Serialize(), 0644); err != nil {
			return err
		}
	}
	o, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(o))
	return nil
}

func RunPuzzle(w io.Writer, name string, program string, arg string, c blink.Config) error {
	api, err := offlineAPI(c)
	if err != nil {
		return err
	}
	d, err := api.RunPuzzle(name, program, arg)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: cost %d\n", d.Puzzle, d.Cost)
	for _, cond := range d.Conditions {
		fmt.Fprintf(w, "  %s\n", cond)
	}
	if len(d.Conditions) == 0 {
		fmt.Fprintf(w, "  result %s\n", hex.EncodeToString(clvm.Serialize(d.Result)))
	}
	return nil
}

// Address encodes a puzzle hash, or decodes an address, for the configured network.
func Address(w io.Writer, s string, c blink.Config) error {
	network, err := c.Network()
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(s), network.AddressPrefix+"1") {
		ph, err := address.DecodeFor(s, network.AddressPrefix)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "0x"+hex.EncodeToString(ph[:]))
		return nil
	}
	ph, err := blink.ParseBytes32(s)
	if err != nil {
		return err
	}
	addr, err := address.Encode(ph, network.AddressPrefix)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, addr)
	return nil
}

func FetchBundle(w io.Writer, name string, c blink.Config, s SubCommandArgs) error {
	u, err := apiURL(c, s, "/bundle/"+name)
	if err != nil {
		return err
	}
	body, err := getURL(u)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// work out the remote API URL from args or config and return
// a complete path with our best guess
func apiURL(c blink.Config, s SubCommandArgs, path string) (string, error) {
	base := ""
	if s.RemoteServer != "" {
		base = s.RemoteServer
	} else {
		host := c.WebAPI.Bind
		if host == "" {
			host = "localhost"
		}
		base = fmt.Sprintf("http://%s:%s/", host, c.WebAPI.Port)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	p, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return u.ResolveReference(p).String(), nil
}

func getURL(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status code: %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
