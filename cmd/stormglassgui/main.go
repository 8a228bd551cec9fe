// Command stormglassgui opens a desktop window on the local stormglass
// server. The server must already be running (or is started separately);
// the shell only hosts the map UI.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"runtime"
	"time"

	webview "github.com/webview/webview_go"
)

var addr = flag.String("addr", "127.0.0.1:8750", "Address of the stormglass server")

func main() {
	flag.Parse()

	// Webview requires the main thread.
	runtime.LockOSThread()

	url := fmt.Sprintf("http://%s/", *addr)
	waitForServer(url, 10*time.Second)

	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Stormglass")
	w.SetSize(1280, 860, webview.HintNone)
	w.Navigate(url)
	w.Run()

	// Window closed: ask the server to shut down too.
	if _, err := http.Post(fmt.Sprintf("http://%s/api/shutdown", *addr), "", http.NoBody); err != nil {
		fmt.Println("server shutdown request failed:", err)
	}
}

// waitForServer polls the health endpoint so the window doesn't open on a
// connection error during startup races.
func waitForServer(url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "health")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}
