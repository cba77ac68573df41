package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/klingon-exchange/klingon-dlc/internal/api"
	"github.com/klingon-exchange/klingon-dlc/internal/dlc"
)

// Version of the daemon
const Version = "0.1.0-dev"

// ========================================
// Node handlers
// ========================================

// NodeInfoResult is the response for node_info.
type NodeInfoResult struct {
	Version   string     `json:"version"`
	Network   string     `json:"network"`
	Policy    PolicyInfo `json:"policy"`
	Uptime    string     `json:"uptime"`
	WSClients int        `json:"ws_clients"`
	Builds    uint64     `json:"builds"`
	Rejected  uint64     `json:"rejected"`
}

// PolicyInfo reports the construction constants in use.
type PolicyInfo struct {
	TxVersion          int32  `json:"tx_version"`
	DustLimit          uint64 `json:"dust_limit"`
	WitnessScaleFactor uint64 `json:"witness_scale_factor"`
	FundTxBaseWeight   uint64 `json:"fund_tx_base_weight"`
	CetBaseWeight      uint64 `json:"cet_base_weight"`
	TxInputBaseWeight  uint64 `json:"tx_input_base_weight"`
}

func (s *Server) nodeInfo(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &NodeInfoResult{
		Version: Version,
		Network: string(s.network.Network),
		Policy: PolicyInfo{
			TxVersion:          s.policy.TxVersion,
			DustLimit:          s.policy.DustLimit,
			WitnessScaleFactor: s.policy.WitnessScaleFactor,
			FundTxBaseWeight:   s.policy.FundTxBaseWeight,
			CetBaseWeight:      s.policy.CetBaseWeight,
			TxInputBaseWeight:  s.policy.TxInputBaseWeight,
		},
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		WSClients: s.wsHub.ClientCount(),
		Builds:    s.builds.Load(),
		Rejected:  s.rejected.Load(),
	}, nil
}

// ========================================
// Contract handlers
// ========================================

// ContractBuiltEvent is broadcast after a successful construction.
type ContractBuiltEvent struct {
	BuildID  string `json:"build_id"`
	FundTxID string `json:"fund_txid"`
	FundVout uint32 `json:"fund_vout"`
	Cets     int    `json:"cets"`
}

// ContractRejectedEvent is broadcast when contract parameters are rejected.
type ContractRejectedEvent struct {
	BuildID string `json:"build_id"`
	Kind    string `json:"kind"`
	Party   string `json:"party,omitempty"`
	Field   string `json:"field,omitempty"`
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: missing params", errInvalidParams)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// newBuilder returns a builder whose debug output is tagged with buildID.
func (s *Server) newBuilder(buildID string) (*dlc.Builder, error) {
	return dlc.NewBuilder(s.policy, dlc.WithLogger(s.log.Component("dlc").With("build_id", buildID)))
}

func (s *Server) dlcCreateTransactions(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req api.CreateTransactionsRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	buildID := uuid.New().String()
	b, err := s.newBuilder(buildID)
	if err != nil {
		return nil, err
	}

	resp, err := api.Build(b, &req, s.network.Chain)
	if err != nil {
		s.rejected.Add(1)
		var cerr *dlc.ContractError
		if errors.As(err, &cerr) {
			s.wsHub.Broadcast(EventContractRejected, &ContractRejectedEvent{
				BuildID: buildID,
				Kind:    dlc.ErrorKind(err),
				Party:   string(cerr.Party),
				Field:   cerr.Field,
			})
		}
		return nil, err
	}
	resp.BuildID = buildID
	s.builds.Add(1)

	fundTxID := resp.Summary.Fund.TxID
	s.log.Info("Contract built",
		"build_id", buildID,
		"fund_txid", fundTxID,
		"cets", len(resp.Cets),
	)
	s.wsHub.Broadcast(EventContractBuilt, &ContractBuiltEvent{
		BuildID:  buildID,
		FundTxID: fundTxID,
		FundVout: resp.FundVout,
		Cets:     len(resp.Cets),
	})

	return resp, nil
}

// ValidateResult is the response for dlc_validate.
type ValidateResult struct {
	Valid bool `json:"valid"`
}

func (s *Server) dlcValidate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req api.CreateTransactionsRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	contract, err := req.ContractParams(s.network.Chain)
	if err != nil {
		return nil, err
	}
	b, err := dlc.NewBuilder(s.policy)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(contract); err != nil {
		return nil, err
	}
	return &ValidateResult{Valid: true}, nil
}

func (s *Server) dlcFundingScript(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req api.FundingScriptRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return api.FundingScript(&req, s.network.Chain)
}

func (s *Server) dlcDecodeTransaction(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req api.DecodeTransactionRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return api.DecodeTransaction(req.Tx, s.network.Chain)
}
