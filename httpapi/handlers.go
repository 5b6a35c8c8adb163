package httpapi

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/lookbusy1344/sleigh-lift/il"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.sessions.Count(),
		Arch:     s.t.Arch.Processor,
	})
}

func (s *Server) handleSpecInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, SpecInfoResponse{
		Name:       s.t.Prog.Name,
		Processor:  s.t.Arch.Processor,
		Endian:     s.t.Arch.Endian,
		Bits:       s.t.Arch.Bits,
		AlignBytes: s.t.Prog.AlignBytes,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		session, err := s.sessions.Create()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, SessionCreateResponse{SessionID: session.ID, CreatedAt: session.CreatedAt})
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.sessions.List())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSessionRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/session/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "session id required")
		return
	}
	sessionID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.sessions.Destroy(sessionID); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch parts[1] {
	case "disassemble":
		s.handleDisassemble(w, r, session)
	case "pcode":
		s.handlePCode(w, r, session)
	case "ecode":
		s.handleECode(w, r, session)
	default:
		writeError(w, http.StatusNotFound, "unknown action: "+parts[1])
	}
}

func (s *Server) decodeRequestBytes(w http.ResponseWriter, r *http.Request) (uint64, []byte, bool) {
	var req DecodeRequest
	if err := readJSON(r, s.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return 0, nil, false
	}
	bytes, err := hex.DecodeString(req.Bytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hex in bytes field: "+err.Error())
		return 0, nil, false
	}
	return req.Address, bytes, true
}

func (s *Server) handleDisassemble(w http.ResponseWriter, r *http.Request, session *Session) {
	addr, bytes, ok := s.decodeRequestBytes(w, r)
	if !ok {
		return
	}
	inst, err := s.t.Disassemble(session.Ctx, addr, bytes)
	if err != nil {
		status, msg := decodeErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, DisassembleResponse{Address: inst.Addr, Text: inst.Text, Length: inst.Len, DelaySlots: inst.DelaySlots})
}

func (s *Server) handlePCode(w http.ResponseWriter, r *http.Request, session *Session) {
	addr, bytes, ok := s.decodeRequestBytes(w, r)
	if !ok {
		return
	}
	pcode, err := s.t.LiftPCode(session.Ctx, addr, bytes)
	if err != nil {
		status, msg := decodeErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	ops := make([]PCodeOpResponse, len(pcode.Ops))
	for i, op := range pcode.Ops {
		ops[i] = PCodeOpResponse{Text: op.String()}
	}
	writeJSON(w, http.StatusOK, PCodeResponse{Address: pcode.Addr, Ops: ops, Length: pcode.Len, DelaySlots: pcode.DelaySlots})
}

func (s *Server) handleECode(w http.ResponseWriter, r *http.Request, session *Session) {
	addr, bytes, ok := s.decodeRequestBytes(w, r)
	if !ok {
		return
	}
	ecode, err := s.t.LiftECode(session.Ctx, addr, bytes)
	if err != nil {
		status, msg := decodeErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	stmts := make([]ECodeStmtResponse, len(ecode.Stmts))
	for i, stmt := range ecode.Stmts {
		stmts[i] = ECodeStmtResponse{Text: stmtText(stmt)}
	}
	writeJSON(w, http.StatusOK, ECodeResponse{Address: ecode.Addr, Stmts: stmts, Length: ecode.Len, DelaySlots: ecode.DelaySlots})
}

func stmtText(s il.Stmt) string {
	return s.String()
}
