package config

type PaymentConfig struct {
	Currency           string  `yaml:"currency"`
	CommissionRate     float64 `yaml:"commission_rate"`
	MinTopupAmount     float64 `yaml:"min_topup_amount"`
	MaxTopupAmount     float64 `yaml:"max_topup_amount"`
	MaxWithdrawalDaily float64 `yaml:"max_withdrawal_daily"`
	ReferrerBonus      float64 `yaml:"referrer_bonus"`
	RefereeBonus       float64 `yaml:"referee_bonus"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Currency:           getEnv("PAYMENT_CURRENCY", "MAD"),
		CommissionRate:     getEnvAsFloat64("PLATFORM_COMMISSION_RATE", 0.12),
		MinTopupAmount:     getEnvAsFloat64("MIN_TOPUP_AMOUNT", 10.0),
		MaxTopupAmount:     getEnvAsFloat64("MAX_TOPUP_AMOUNT", 5000.0),
		MaxWithdrawalDaily: getEnvAsFloat64("MAX_WITHDRAWAL_DAILY", 10000.0),
		ReferrerBonus:      getEnvAsFloat64("REFERRAL_REFERRER_BONUS", 20.0),
		RefereeBonus:       getEnvAsFloat64("REFERRAL_REFEREE_BONUS", 10.0),
	}
}
