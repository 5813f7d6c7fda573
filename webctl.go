// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/net/websocket"
	"golang.org/x/xerrors"
)

// WebCtl is a web front-end to a pipeline controller.
//
//	GET  /        home page
//	POST /cmd     run a command (cmd=/stop or cmd=/status)
//	WS   /status  stream of status reports
type WebCtl struct {
	ctl  *Controller
	mux  *http.ServeMux
	tmpl *template.Template

	// Freq is the period of the websocket status reports.
	Freq time.Duration
}

// NewWebCtl returns a web front-end to ctl.
func NewWebCtl(ctl *Controller) *WebCtl {
	wc := &WebCtl{
		ctl:  ctl,
		mux:  http.NewServeMux(),
		tmpl: template.Must(template.New("acq-home").Parse(webHomePage)),
		Freq: 1 * time.Second,
	}
	wc.mux.HandleFunc("/", wc.webHome)
	wc.mux.HandleFunc("/cmd", wc.webCmd)
	wc.mux.Handle("/status", websocket.Handler(wc.webStatus))
	return wc
}

func (wc *WebCtl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wc.mux.ServeHTTP(w, r)
}

// ListenAndServe serves the web front-end on addr until ctx is done
// or the pipeline is stopped.
func (wc *WebCtl) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: wc,
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-wc.ctl.done:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	wc.ctl.msg.Infof("starting web control server on %q...", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return xerrors.Errorf("acq: could not run web control server: %w", err)
	}
	return nil
}

// StatusReport is the status of a pipeline, as served by WebCtl.
type StatusReport struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Frames    int64   `json:"frames"`
	FPS       float64 `json:"fps"`
	Timestamp string  `json:"timestamp"`
}

func (wc *WebCtl) report() StatusReport {
	rate := wc.ctl.Rate()
	return StatusReport{
		Name:      wc.ctl.Name(),
		Status:    wc.ctl.Status().String(),
		Frames:    rate.Frames,
		FPS:       rate.FPS,
		Timestamp: time.Now().UTC().Format("2006-01-02 15:04:05") + " (UTC)",
	}
}

func (wc *WebCtl) webHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	err := wc.tmpl.Execute(w, wc.ctl.Name())
	if err != nil {
		wc.ctl.msg.Errorf("error executing web home-page template: %+v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (wc *WebCtl) webCmd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := r.ParseMultipartForm(1 << 20)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		wc.ctl.msg.Errorf("could not parse multipart form: %+v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := r.PostFormValue("cmd")
	switch cmd {
	case "/stop":
		wc.ctl.msg.Infof("received %q over web-gui", cmd)
		wc.ctl.Stop()
		w.WriteHeader(http.StatusOK)
	case "/status":
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(wc.report())
		if err != nil {
			wc.ctl.msg.Errorf("could not send /status report: %+v", err)
		}
	default:
		wc.ctl.msg.Errorf("received invalid cmd %q over web-gui", cmd)
		http.Error(w, fmt.Sprintf("received invalid cmd %q", cmd), http.StatusBadRequest)
	}
}

func (wc *WebCtl) webStatus(ws *websocket.Conn) {
	defer ws.Close()

	tick := time.NewTicker(wc.Freq)
	defer tick.Stop()

	send := func() bool {
		err := websocket.JSON.Send(ws, wc.report())
		if err != nil {
			wc.ctl.msg.Warnf("could not send /status report to websocket client: %+v", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-wc.ctl.done:
			send()
			return
		case <-tick.C:
			if !send() {
				return
			}
		}
	}
}

const webHomePage = `<html>
<head>
	<title>{{.}} - acq</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<script type="text/javascript">
	"use strict"

	window.onload = function() {
		var statusChan = new WebSocket("ws://"+location.host+"/status");
		statusChan.onmessage = function(event) {
			var data = JSON.parse(event.data);
			document.getElementById("acq-status").innerHTML = data.status;
			document.getElementById("acq-fps").innerHTML = data.fps.toFixed(1);
			document.getElementById("acq-update").innerHTML = data.timestamp;
		};
	};

	function cmdStop() {
		var data = new FormData();
		data.append("cmd", "/stop");
		fetch("/cmd", {method: "POST", body: data}).then(function(resp) {
			if (!resp.ok) {
				resp.text().then(function(txt) { alert("could not stop pipeline:\n"+txt); });
			}
		});
	};
	</script>
</head>
<body>
	<h2>{{.}}</h2>
	<table>
		<tr><th>Status:</th><td id="acq-status">N/A</td></tr>
		<tr><th>FPS:</th><td id="acq-fps">N/A</td></tr>
		<tr><th>Last update:</th><td id="acq-update">N/A</td></tr>
	</table>
	<input type="button" onclick="cmdStop()" value="Stop">
</body>
</html>
`
