package monitoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/syifan/goseth"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, struct {
		Now sim.VTimeInCycle `json:"now"`
	}{m.engine.CurrentTime()})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, len(m.components))
	for i, c := range m.components {
		names[i] = c.Name()
	}

	writeJSON(w, names)
}

func (m *Monitor) component(name string) (sim.Component, error) {
	for _, c := range m.components {
		if c.Name() == name {
			return c, nil
		}
	}

	return nil, fmt.Errorf("component %q not found", name)
}

// tick wakes a sleeping component up, which helps to tell a stuck component
// from one that has nothing to do.
func (m *Monitor) tick(w http.ResponseWriter, r *http.Request) {
	c, err := m.component(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	ticker, ok := c.(interface{ TickLater() })
	if !ok {
		writeError(w, http.StatusMethodNotAllowed,
			fmt.Errorf("%s does not tick", c.Name()))
		return
	}

	ticker.TickLater()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) componentDetails(w http.ResponseWriter, r *http.Request) {
	c, err := m.component(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	m.serialize(w, c, nil)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

// fieldValue serializes one field of a component. The request is a JSON
// object in the path, naming the component and a dot separated field path.
func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}
	if err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.FieldName == "" {
		writeError(w, http.StatusBadRequest, errors.New("field_name is empty"))
		return
	}

	c, err := m.component(req.CompName)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	m.serialize(w, c, strings.Split(req.FieldName, "."))
}

func (m *Monitor) serialize(w http.ResponseWriter, c sim.Component, path []string) {
	s := goseth.NewSerializer()
	s.SetRoot(c)
	s.SetMaxDepth(1)

	if path != nil {
		if err := s.SetEntryPoint(path); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if l, ok := c.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := s.Serialize(w); err != nil {
		writeError(w, http.StatusInternalServerError, err)
	}
}
