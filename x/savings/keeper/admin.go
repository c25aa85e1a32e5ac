package keeper

import (
	"context"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/savings-ledger/x/savings/types"
)

// GetAdminConfig returns the stored admin configuration, falling back to the
// bootstrap authority with filtering disabled
func (k *Keeper) GetAdminConfig(ctx sdk.Context) (types.AdminConfig, error) {
	var cfg types.AdminConfig
	found, err := k.getJSON(ctx, types.AdminConfigKey, &cfg)
	if err != nil {
		return types.AdminConfig{}, err
	}
	if !found {
		return types.DefaultAdminConfig(k.authority), nil
	}
	return cfg, nil
}

// SetAdminConfig stores cfg unconditionally; used by genesis
func (k *Keeper) SetAdminConfig(ctx sdk.Context, cfg types.AdminConfig) {
	k.setJSON(ctx, types.AdminConfigKey, cfg)
}

// IsTokenAllowed returns true when filtering is disabled, otherwise the allowlist membership
func (k *Keeper) IsTokenAllowed(ctx sdk.Context, tokenID string) (bool, error) {
	cfg, err := k.GetAdminConfig(ctx)
	if err != nil {
		return false, err
	}
	if !cfg.TokenFilteringEnabled {
		return true, nil
	}
	return k.GetStore(ctx).Has(types.AllowedTokenKey(tokenID)), nil
}

// GetAllowedTokens returns the allowlist in key order
func (k *Keeper) GetAllowedTokens(ctx sdk.Context) []string {
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), types.AllowedTokenKeyPrefix)
	defer iterator.Close()

	var tokens []string
	for ; iterator.Valid(); iterator.Next() {
		tokens = append(tokens, string(iterator.Key()[len(types.AllowedTokenKeyPrefix):]))
	}
	return tokens
}

func (k *Keeper) setTokenAllowed(ctx sdk.Context, tokenID string, allowed bool) {
	store := k.GetStore(ctx)
	if allowed {
		store.Set(types.AllowedTokenKey(tokenID), []byte{1})
		return
	}
	store.Delete(types.AllowedTokenKey(tokenID))
}

// authorize loads the admin configuration and checks caller against it
func (k *Keeper) authorize(ctx sdk.Context, caller string) (types.AdminConfig, error) {
	cfg, err := k.GetAdminConfig(ctx)
	if err != nil {
		return types.AdminConfig{}, err
	}
	if caller == "" || caller != cfg.Administrator {
		return types.AdminConfig{}, types.ErrNotAuthorized.Wrapf("caller %s", caller)
	}
	return cfg, nil
}

func (k *Keeper) emitAdminUpdate(ctx sdk.Context, caller, action, value string) {
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeAdminUpdate,
			sdk.NewAttribute(types.AttributeKeyAction, action),
			sdk.NewAttribute(types.AttributeKeyValue, value),
			sdk.NewAttribute("authority", caller),
		),
	)
	k.logger.Info("Admin configuration updated",
		"action", action,
		"value", value,
		"authority", caller,
	)
}

// SetAllowedToken adds or removes tokenID from the allowlist
func (k *Keeper) SetAllowedToken(ctx context.Context, caller, tokenID string, allowed bool) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if _, err := k.authorize(sdkCtx, caller); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(tokenID); err != nil {
		return types.ErrInvalidToken.Wrap(err.Error())
	}

	k.setTokenAllowed(sdkCtx, tokenID, allowed)
	k.emitAdminUpdate(sdkCtx, caller, "set_allowed_token", tokenID+"="+strconv.FormatBool(allowed))
	return nil
}

// SetTokenFilteringEnabled toggles allowlist enforcement
func (k *Keeper) SetTokenFilteringEnabled(ctx context.Context, caller string, enabled bool) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	cfg, err := k.authorize(sdkCtx, caller)
	if err != nil {
		return err
	}

	cfg.TokenFilteringEnabled = enabled
	k.SetAdminConfig(sdkCtx, cfg)
	k.emitAdminUpdate(sdkCtx, caller, "set_token_filtering", strconv.FormatBool(enabled))
	return nil
}

// SetFeeRecipient configures the account receiving early withdrawal fees
func (k *Keeper) SetFeeRecipient(ctx context.Context, caller, recipient string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	cfg, err := k.authorize(sdkCtx, caller)
	if err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(recipient); err != nil {
		return types.ErrInvalidAddress.Wrapf("fee recipient: %v", err)
	}

	cfg.FeeRecipient = recipient
	k.SetAdminConfig(sdkCtx, cfg)
	k.emitAdminUpdate(sdkCtx, caller, "set_fee_recipient", recipient)
	return nil
}

// TransferAdministration hands the administrator role to newAdmin
func (k *Keeper) TransferAdministration(ctx context.Context, caller, newAdmin string) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	cfg, err := k.authorize(sdkCtx, caller)
	if err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(newAdmin); err != nil {
		return types.ErrInvalidAddress.Wrapf("administrator: %v", err)
	}

	cfg.Administrator = newAdmin
	k.SetAdminConfig(sdkCtx, cfg)
	k.emitAdminUpdate(sdkCtx, caller, "transfer_administration", newAdmin)
	return nil
}
