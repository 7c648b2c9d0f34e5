package cmd

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/jsphweid/orchid/engine"
	"github.com/jsphweid/orchid/looper"
	"github.com/jsphweid/orchid/model"
	"github.com/jsphweid/orchid/smfexport"
)

// serveStatus exposes a read-only view of the running session: the
// engine/looper snapshot as JSON and the current loop as a .mid
// download.
func serveStatus(addr string, eng *engine.Engine, loop *looper.Looper) {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		res := model.StatusResponse{
			Engine: eng.Status(),
			Looper: loop.Status(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}).Methods("GET")

	router.HandleFunc("/loop.mid", func(w http.ResponseWriter, r *http.Request) {
		layers := loop.Layers()
		if len(layers) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(model.ErrorResponse{Error: "no recorded layers"})
			return
		}
		w.Header().Set("Content-Type", "audio/midi")
		if err := smfexport.Write(w, layers); err != nil {
			log.Printf("loop export failed: %v", err)
		}
	}).Methods("GET")

	log.Printf("status API on %v", addr)
	if err := http.ListenAndServe(addr, cors.Default().Handler(router)); err != nil {
		log.Printf("status API stopped: %v", err)
	}
}
