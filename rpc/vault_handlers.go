package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
)

type vaultOpenPositionParams struct {
	Owner string `json:"owner"`
}

type vaultSelectAdapterParams struct {
	Caller     string `json:"caller"`
	PositionID string `json:"positionId"`
	Adapter    string `json:"adapter"`
	RefTag     uint64 `json:"refTag"`
}

type vaultTriggerParams struct {
	Liquidator string `json:"liquidator"`
	PositionID string `json:"positionId"`
	Amount     string `json:"amount"`
}

type vaultPositionParams struct {
	PositionID string `json:"positionId"`
}

type vaultOpenPositionResult struct {
	PositionID string `json:"positionId"`
}

type vaultAckResult struct {
	Status string `json:"status"`
}

var errParamCount = errors.New("expected exactly one parameter object")

func decodeSingleParam(req *RPCRequest, target interface{}) error {
	if len(req.Params) != 1 {
		return errParamCount
	}
	return json.Unmarshal(req.Params[0], target)
}

func (s *Server) handleVaultOpenPosition(w http.ResponseWriter, req *RPCRequest) {
	var params vaultOpenPositionParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	id, moduleErr := s.vault.OpenPosition(params.Owner)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultOpenPositionResult{PositionID: id})
}

func (s *Server) handleVaultSelectAdapter(w http.ResponseWriter, req *RPCRequest) {
	var params vaultSelectAdapterParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	if moduleErr := s.vault.SelectAdapter(params.Caller, params.PositionID, params.Adapter, params.RefTag); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultAckResult{Status: "ok"})
}

func (s *Server) handleVaultTrigger(w http.ResponseWriter, req *RPCRequest) {
	var params vaultTriggerParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	if moduleErr := s.vault.Trigger(params.Liquidator, params.PositionID, params.Amount); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultAckResult{Status: "ok"})
}

func (s *Server) handleVaultGetPosition(w http.ResponseWriter, req *RPCRequest) {
	var params vaultPositionParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameters", err.Error())
		return
	}
	result, moduleErr := s.vault.GetPosition(params.PositionID)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, result)
}
