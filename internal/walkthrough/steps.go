package walkthrough

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"ocean-df/internal/walkthrough/cache"
	"ocean-df/internal/walkthrough/model"
	"ocean-df/pkg/evm_client"
	"ocean-df/pkg/ocean"
	"ocean-df/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Connect 连接链、加载合约地址与钱包
func (s *Session) Connect(ctx context.Context) error {
	tl := s.log(ctx)

	chainID, err := s.deps.Backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	addrs, err := s.deps.LoadAddresses(s.cfg.Network.Name)
	if err != nil {
		return err
	}
	if addrs.ChainID != 0 && addrs.ChainID != chainID.Uint64() {
		return fmt.Errorf("address file is for chain %d, node reports %d", addrs.ChainID, chainID.Uint64())
	}

	wallet, err := evm_client.WalletFromEnv(s.cfg.Wallet.PrivateKeyEnv)
	if err != nil {
		return err
	}

	tx := evm_client.NewTransactor(s.deps.Backend, wallet, chainID, s.tl,
		evm_client.WithTxTimeout(s.cfg.Network.TxTimeoutDuration()),
		evm_client.WithObservers(s.deps.Observers...),
	)
	s.Wallet = wallet
	s.ChainID = chainID.Uint64()
	s.Ocean = ocean.New(addrs, tx, s.deps.Provider, s.tl)
	s.Chain = evm_client.NewDevChain(s.deps.Backend, s.deps.RPC, s.tl)

	tl.Info("Connected",
		zap.String("network", s.cfg.Network.Name),
		zap.Uint64("chain_id", s.ChainID),
		zap.String("ocean", addrs.Ocean.Hex()))
	tl.Info(fmt.Sprintf("alice_wallet address is %s", wallet.Address.Hex()))
	return nil
}

// FundWallet 用部署者钱包铸造假 OCEAN 并给测试钱包补充 OCEAN/ETH
func (s *Session) FundWallet(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	tl := s.log(ctx)

	deployer, err := s.deployerWallet()
	if err != nil {
		return err
	}

	recipients := []common.Address{s.Wallet.Address}
	for _, name := range s.cfg.Wallet.FaucetKeyEnvs {
		w, err := evm_client.WalletFromEnv(name)
		if errors.Is(err, evm_client.ErrMissingKey) {
			continue
		}
		if err != nil {
			return err
		}
		if !containsAddress(recipients, w.Address) {
			recipients = append(recipients, w.Address)
		}
	}

	f := s.cfg.Faucet
	if err := s.Ocean.MintFakeOCEAN(ctx, deployer, recipients, ocean.FaucetAmounts{
		Mint:      utils.ToWeiFloat(f.MintAmount),
		PerWallet: utils.ToWeiFloat(f.WalletAmount),
		MinETH:    utils.ToWeiFloat(f.MinETH),
		TopUpETH:  utils.ToWeiFloat(f.ETHAmount),
	}); err != nil {
		return err
	}

	bal, err := s.Ocean.OCEAN.BalanceOf(ctx, s.Wallet.Address)
	if err != nil {
		return err
	}
	if bal.Sign() <= 0 {
		return assertionf("OCEAN balance of %s is zero after funding", s.Wallet.Address.Hex())
	}
	tl.Info("Wallet funded", zap.String("OCEAN", utils.FromWei(bal).String()))
	return nil
}

func (s *Session) deployerWallet() (*evm_client.Wallet, error) {
	w, err := evm_client.WalletFromEnv(s.cfg.Wallet.DeployerKeyEnv)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, evm_client.ErrMissingKey) || s.cfg.Wallet.DeployerKey == "" {
		return nil, err
	}
	return evm_client.NewWallet(s.cfg.Wallet.DeployerKey)
}

// LockOcean 在下一个周四锁仓 OCEAN 换取 veOCEAN
func (s *Session) LockOcean(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	tl := s.log(ctx)
	o := s.Ocean
	alice := s.Wallet.Address

	t0, err := s.Chain.Time(ctx)
	if err != nil {
		return err
	}
	t1 := evm_client.NextEpochStart(t0)
	now, err := s.Chain.AdvanceTo(ctx, t1)
	if err != nil {
		return err
	}

	amount := utils.ToWeiFloat(s.cfg.Farming.LockAmount)
	if _, err := o.OCEAN.Approve(ctx, o.VeOcean.Address(), amount); err != nil {
		return fmt.Errorf("approve veOCEAN: %w", err)
	}

	locked, err := o.VeOcean.Locked(ctx, alice)
	if err != nil {
		return err
	}
	switch {
	case locked.Active(now):
		// 已有未到期锁仓时不能 withdraw/create_lock，只能追加
		tl.Info("Active lock found, increasing amount",
			zap.String("locked", utils.FromWei(locked.Amount).String()),
			zap.Uint64("end", locked.End))
		if _, err := o.VeOcean.IncreaseAmount(ctx, amount); err != nil {
			return fmt.Errorf("increase lock: %w", err)
		}
	default:
		if locked.Amount != nil && locked.Amount.Sign() > 0 {
			if _, err := o.VeOcean.Withdraw(ctx); err != nil {
				return fmt.Errorf("withdraw expired lock: %w", err)
			}
		}
		unlockTime := t1 + uint64(s.cfg.Farming.LockWeeks)*evm_client.Week
		if unlockTime > t1+evm_client.MaxTime {
			unlockTime = t1 + evm_client.MaxTime
		}
		if _, err := o.VeOcean.CreateLock(ctx, amount, unlockTime); err != nil {
			return fmt.Errorf("create lock: %w", err)
		}
		tl.Info("Locked OCEAN",
			zap.String("amount", utils.FromWei(amount).String()),
			zap.Time("unlock_time", time.Unix(int64(unlockTime), 0).UTC()))
	}

	veBal, err := o.VeOcean.BalanceOf(ctx, alice)
	if err != nil {
		return err
	}
	if veBal.Sign() <= 0 {
		return assertionf("veOCEAN balance of %s is zero after locking", alice.Hex())
	}
	tl.Info("veOCEAN balance", zap.String("veOCEAN", utils.FromWei(veBal).String()))
	return nil
}

// PublishAsset 发布数据集并以固定价格出售 datatoken
func (s *Session) PublishAsset(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	tl := s.log(ctx)
	o := s.Ocean
	f := s.cfg.Farming

	dataNFT, dt, asset, err := o.Assets.CreateURLAsset(ctx, f.DatasetName, f.DatasetURL)
	if err != nil {
		return err
	}
	tl.Info("Just published asset", zap.String("data_nft", dataNFT.Address().Hex()), zap.String("did", asset.DID))

	amount := utils.ToWei(decimal.NewFromInt(int64(f.NumConsumes)))
	rate := utils.ToWeiFloat(f.DatatokenPrice)
	id, err := o.CreateFixedRate(ctx, dt, o.OCEAN, amount, rate)
	if err != nil {
		return err
	}

	s.DataNFT, s.Datatoken, s.Asset, s.ExchangeID = dataNFT, dt, asset, id

	if s.deps.State != nil {
		if err := s.deps.State.SaveAsset(ctx, model.PublishedAsset{
			ChainID:      s.ChainID,
			Publisher:    s.Wallet.Address.Hex(),
			DID:          asset.DID,
			NFT:          asset.NFT.Hex(),
			Datatoken:    asset.Datatoken.Hex(),
			ExchangeID:   id.Hex(),
			ServiceID:    asset.ServiceID,
			ServiceIndex: asset.ServiceIndex,
			CreatedAt:    time.Now().UTC(),
		}); err != nil {
			tl.Warn("save published asset failed", zap.Error(err))
		}
	}
	tl.Info("Datatoken on sale",
		zap.String("datatoken", dt.Address().Hex()),
		zap.String("exchange_id", id.Hex()),
		zap.String("price_OCEAN", decimal.NewFromFloat(f.DatatokenPrice).String()))
	return nil
}

// Allocate 把 veOCEAN 投票权重分配给已发布的数据集
func (s *Session) Allocate(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	if err := s.ensureAsset(ctx); err != nil {
		return err
	}
	tl := s.log(ctx)

	amount := uint64(s.cfg.Farming.Allocation)
	if _, err := s.Ocean.VeAllocate.SetAllocation(ctx, amount, s.Asset.NFT, s.Ocean.ChainID()); err != nil {
		return err
	}
	tl.Info("Allocated veOCEAN",
		zap.String("data_nft", s.Asset.NFT.Hex()),
		zap.Uint64("allocation", amount),
		zap.String("percent", decimal.NewFromInt(int64(amount)).Div(decimal.NewFromInt(100)).String()))
	return nil
}

// WashConsume 自己买入并消费数据集，产生消费量
func (s *Session) WashConsume(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	if err := s.ensureAsset(ctx); err != nil {
		return err
	}
	tl := s.log(ctx)
	o := s.Ocean
	alice := s.Wallet.Address
	n := s.cfg.Farming.NumConsumes

	price := utils.ToWeiFloat(s.cfg.Farming.DatatokenPrice)
	need := new(big.Int).Mul(price, big.NewInt(int64(n)))
	oceanBal, err := o.OCEAN.BalanceOf(ctx, alice)
	if err != nil {
		return err
	}
	if oceanBal.Cmp(need) < 0 {
		return assertionf("need %s OCEAN to buy %d datatokens, have %s",
			utils.FromWei(need), n, utils.FromWei(oceanBal))
	}

	if _, err := o.OCEAN.Approve(ctx, o.FixedRateExchange.Address(), oceanBal); err != nil {
		return fmt.Errorf("approve FRE: %w", err)
	}
	fees, err := o.FixedRateExchange.GetFeesInfo(ctx, s.ExchangeID)
	if err != nil {
		return err
	}

	dtBefore, err := s.Datatoken.BalanceOf(ctx, alice)
	if err != nil {
		return err
	}

	// 每次买入 n 个 datatoken，手续费按交易所配置支付给 market
	perBuy := utils.ToWei(decimal.NewFromInt(int64(n)))
	for i := 1; i <= n; i++ {
		tl.Info(fmt.Sprintf("Purchase #%d/%d...", i, n))
		if _, err := o.FixedRateExchange.BuyDT(ctx, s.ExchangeID, perBuy, oceanBal, fees.MarketFeeCollector, fees.MarketFee); err != nil {
			return fmt.Errorf("purchase #%d: %w", i, err)
		}
	}

	dtAfter, err := s.Datatoken.BalanceOf(ctx, alice)
	if err != nil {
		return err
	}
	bought := new(big.Int).Sub(dtAfter, dtBefore)
	if bought.Cmp(new(big.Int).Mul(perBuy, big.NewInt(int64(n)))) < 0 {
		return assertionf("purchases delivered %s datatokens, want %d", utils.FromWei(bought), n*n)
	}
	if dtAfter.Cmp(utils.ToWei(decimal.NewFromInt(int64(n)))) < 0 {
		return assertionf("datatoken balance %s below %d after purchases", utils.FromWei(dtAfter), n)
	}

	for i := 1; i <= n; i++ {
		tl.Info(fmt.Sprintf("Consume #%d/%d...", i, n))
		if _, err := o.Assets.PayForAccessService(ctx, s.Asset); err != nil {
			return fmt.Errorf("consume #%d: %w", i, err)
		}
	}
	tl.Info("Wash consume done", zap.Int("consumes", n), zap.String("did", s.Asset.DID))
	return nil
}

// ClaimRewards 推进到下一个周期并领取 veFeeDistributor 奖励
func (s *Session) ClaimRewards(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	tl := s.log(ctx)
	o := s.Ocean
	alice := s.Wallet.Address

	t, err := s.Chain.Time(ctx)
	if err != nil {
		return err
	}
	if _, err := s.Chain.AdvanceTo(ctx, evm_client.NextEpochStart(t)); err != nil {
		return err
	}

	before, err := o.OCEAN.BalanceOf(ctx, alice)
	if err != nil {
		return err
	}
	receipt, err := o.FeeDistributor.Claim(ctx)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	after, err := o.OCEAN.BalanceOf(ctx, alice)
	if err != nil {
		return err
	}

	claimed := utils.FromWei(new(big.Int).Sub(after, before))
	tl.Info(fmt.Sprintf("Just claimed %s OCEAN rewards", claimed.String()))

	if s.deps.State != nil {
		if err := s.deps.State.SaveClaim(ctx, model.ClaimRecord{
			ChainID:   s.ChainID,
			Wallet:    alice.Hex(),
			Amount:    claimed.String(),
			TxHash:    receipt.TxHash.Hex(),
			ClaimedAt: time.Now().UTC(),
		}); err != nil {
			tl.Warn("save claim failed", zap.Error(err))
		}
	}
	return nil
}

// Balances 打印钱包 ETH/OCEAN/veOCEAN 以及已发布 datatoken 的余额
func (s *Session) Balances(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	tl := s.log(ctx)
	o := s.Ocean

	tokens := []common.Address{o.OCEAN.Address(), o.VeOcean.Address()}
	names := map[common.Address]string{o.OCEAN.Address(): "OCEAN", o.VeOcean.Address(): "veOCEAN"}
	if err := s.ensureAsset(ctx); err == nil {
		tokens = append(tokens, s.Asset.Datatoken)
		names[s.Asset.Datatoken] = "datatoken"
	}

	native, balances, err := evm_client.GetWalletBalances(ctx, s.deps.Backend, s.Wallet.Address, tokens)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("wallet", s.Wallet.Address.Hex()),
		zap.String("ETH", utils.FromWei(native).String()),
	}
	for _, token := range tokens {
		fields = append(fields, zap.String(names[token], utils.FromWei(balances[token]).String()))
	}
	if s.deps.State != nil {
		if claim, err := s.deps.State.LoadClaim(ctx, s.ChainID, s.Wallet.Address.Hex()); err == nil {
			fields = append(fields, zap.String("last_claim_OCEAN", claim.Amount))
		}
	}
	tl.Info("Balances", fields...)
	return nil
}

// ensureAsset 本次会话未发布时，从状态缓存恢复最近一次发布
func (s *Session) ensureAsset(ctx context.Context) error {
	if s.Asset != nil {
		return nil
	}
	if s.deps.State == nil {
		return errors.New("no published asset in this session")
	}

	stored, err := s.deps.State.LoadAsset(ctx, s.ChainID, s.Wallet.Address.Hex())
	if errors.Is(err, cache.ErrNotFound) {
		if !s.deps.State.Persistent() {
			return fmt.Errorf("no published asset for %s on chain %d: state is kept in process memory only, configure redis.address to reuse a publication across runs", s.Wallet.Address.Hex(), s.ChainID)
		}
		return fmt.Errorf("no published asset for %s on chain %d: run the full walkthrough first", s.Wallet.Address.Hex(), s.ChainID)
	}
	if err != nil {
		return err
	}

	s.Asset = &ocean.Asset{
		DID:          stored.DID,
		NFT:          common.HexToAddress(stored.NFT),
		Datatoken:    common.HexToAddress(stored.Datatoken),
		ServiceID:    stored.ServiceID,
		ServiceIndex: stored.ServiceIndex,
	}
	s.DataNFT = ocean.NewDataNFT(s.Asset.NFT, s.Ocean.Transactor())
	s.Datatoken = s.Ocean.Datatoken(s.Asset.Datatoken)
	s.ExchangeID = ocean.HexToExchangeID(stored.ExchangeID)
	s.log(ctx).Info("Loaded published asset", zap.String("did", stored.DID), zap.String("exchange_id", stored.ExchangeID))
	return nil
}

func containsAddress(list []common.Address, a common.Address) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}
