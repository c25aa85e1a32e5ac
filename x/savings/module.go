package savings

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/keeper"
	"github.com/openalpha/savings-ledger/x/savings/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ appmodule.AppModule = AppModule{}
)

// AppModuleBasic defines the basic application module for savings
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgOpenPool{}, "savings/MsgOpenPool", nil)
	cdc.RegisterConcrete(&types.MsgUpdatePool{}, "savings/MsgUpdatePool", nil)
	cdc.RegisterConcrete(&types.MsgWithdrawPool{}, "savings/MsgWithdrawPool", nil)
	cdc.RegisterConcrete(&types.MsgStopPool{}, "savings/MsgStopPool", nil)
	cdc.RegisterConcrete(&types.MsgRestartPool{}, "savings/MsgRestartPool", nil)
	cdc.RegisterConcrete(&types.MsgSetAllowedToken{}, "savings/MsgSetAllowedToken", nil)
	cdc.RegisterConcrete(&types.MsgSetTokenFiltering{}, "savings/MsgSetTokenFiltering", nil)
	cdc.RegisterConcrete(&types.MsgSetFeeRecipient{}, "savings/MsgSetFeeRecipient", nil)
	cdc.RegisterConcrete(&types.MsgTransferAdmin{}, "savings/MsgTransferAdmin", nil)
}

// DefaultGenesis returns default genesis state for admin as raw bytes
func (AppModuleBasic) DefaultGenesis(admin string) json.RawMessage {
	bz, _ := json.Marshal(types.DefaultGenesis(admin))
	return bz
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(bz json.RawMessage) error {
	var gs types.GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return types.ErrInvalidGenesis.Wrap(err.Error())
	}
	return gs.Validate()
}

// AppModule implements an application module for the savings module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// InitGenesis loads raw genesis state into the store
func (am AppModule) InitGenesis(ctx sdk.Context, bz json.RawMessage) error {
	var gs types.GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return types.ErrInvalidGenesis.Wrap(err.Error())
	}
	return am.keeper.InitGenesis(ctx, gs)
}

// ExportGenesis returns the module state as raw bytes
func (am AppModule) ExportGenesis(ctx sdk.Context) (json.RawMessage, error) {
	gs, err := am.keeper.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(gs, "", "  ")
}

// RegisterInvariants registers the savings invariants
func (am AppModule) RegisterInvariants(ir sdk.InvariantRegistry) {
	keeper.RegisterInvariants(ir, am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}
