package keeper

import (
	"context"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/openalpha/savings-ledger/x/custody/types"
)

// Keeper is a minimal value-custody ledger holding per-address coin balances.
// Module accounts are addressed with authtypes.NewModuleAddress.
type Keeper struct {
	storeKey storetypes.StoreKey
	logger   log.Logger
}

// NewKeeper creates a new custody keeper
func NewKeeper(storeKey storetypes.StoreKey, logger log.Logger) *Keeper {
	return &Keeper{
		storeKey: storeKey,
		logger:   logger.With("module", "x/"+types.ModuleName),
	}
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// GetBalance returns addr's balance of denom
func (k *Keeper) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	bz := k.GetStore(sdkCtx).Get(types.BalanceKey(addr, denom))
	if bz == nil {
		return sdk.NewCoin(denom, math.ZeroInt())
	}
	amount, ok := math.NewIntFromString(string(bz))
	if !ok {
		k.logger.Error("Corrupted balance record", "address", addr.String(), "denom", denom)
		return sdk.NewCoin(denom, math.ZeroInt())
	}
	return sdk.NewCoin(denom, amount)
}

// GetAllBalances returns every non-zero balance held by addr
func (k *Keeper) GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	prefix := types.AddressBalancesPrefix(addr)
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(sdkCtx), prefix)
	defer iterator.Close()

	coins := sdk.NewCoins()
	for ; iterator.Valid(); iterator.Next() {
		denom := string(iterator.Key()[len(prefix):])
		amount, ok := math.NewIntFromString(string(iterator.Value()))
		if !ok {
			continue
		}
		coins = coins.Add(sdk.NewCoin(denom, amount))
	}
	return coins
}

// GetModuleBalance returns the balance of a module account
func (k *Keeper) GetModuleBalance(ctx context.Context, moduleName, denom string) sdk.Coin {
	return k.GetBalance(ctx, authtypes.NewModuleAddress(moduleName), denom)
}

func (k *Keeper) setBalance(ctx sdk.Context, addr sdk.AccAddress, coin sdk.Coin) {
	store := k.GetStore(ctx)
	key := types.BalanceKey(addr, coin.Denom)
	if coin.Amount.IsZero() {
		store.Delete(key)
		return
	}
	store.Set(key, []byte(coin.Amount.String()))
}

func (k *Keeper) addCoins(ctx sdk.Context, addr sdk.AccAddress, amt sdk.Coins) {
	for _, coin := range amt {
		balance := k.GetBalance(ctx, addr, coin.Denom)
		k.setBalance(ctx, addr, balance.Add(coin))
	}
}

func (k *Keeper) subCoins(ctx sdk.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	for _, coin := range amt {
		if balance := k.GetBalance(ctx, addr, coin.Denom); balance.IsLT(coin) {
			return types.ErrInsufficientFunds.Wrapf("%s has %s, needs %s", addr, balance, coin)
		}
	}
	for _, coin := range amt {
		balance := k.GetBalance(ctx, addr, coin.Denom)
		k.setBalance(ctx, addr, balance.Sub(coin))
	}
	return nil
}

// SendCoins moves amt from one account to another
func (k *Keeper) SendCoins(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if !amt.IsValid() {
		return types.ErrInvalidCoins.Wrap(amt.String())
	}
	if len(from) == 0 || len(to) == 0 {
		return types.ErrInvalidAddress
	}
	if err := k.subCoins(sdkCtx, from, amt); err != nil {
		return err
	}
	k.addCoins(sdkCtx, to, amt)

	k.logger.Debug("Coins transferred", "from", from.String(), "to", to.String(), "amount", amt.String())
	return nil
}

// SendCoinsFromAccountToModule moves amt from an account into a module account
func (k *Keeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return k.SendCoins(ctx, senderAddr, authtypes.NewModuleAddress(recipientModule), amt)
}

// SendCoinsFromModuleToAccount moves amt out of a module account
func (k *Keeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return k.SendCoins(ctx, authtypes.NewModuleAddress(senderModule), recipientAddr, amt)
}

// Fund credits amt to addr out of thin air; local ledgers use it as a faucet
func (k *Keeper) Fund(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if !amt.IsValid() {
		return types.ErrInvalidCoins.Wrap(amt.String())
	}
	if len(addr) == 0 {
		return types.ErrInvalidAddress
	}
	k.addCoins(sdkCtx, addr, amt)

	k.logger.Info("Account funded", "address", addr.String(), "amount", amt.String())
	return nil
}
