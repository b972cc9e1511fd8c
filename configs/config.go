package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type PlatformCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Facebook  PlatformCredentials
	Instagram PlatformCredentials
	Twitter   PlatformCredentials
	LinkedIn  PlatformCredentials
	Google    PlatformCredentials
	Tiktok    PlatformCredentials

	FacebookVerifyToken   string
	TwitterConsumerSecret string

	PostgresURI string
	RedisURI    string
	FrontendURL string
	R2          R2
	SecretKey   string
	CookieName  string
}

func LoadConfig() *Config {
	return &Config{
		Facebook: PlatformCredentials{
			ClientID:     getEnv("FACEBOOK_APP_ID", ""),
			ClientSecret: getEnv("FACEBOOK_APP_SECRET", ""),
			RedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		},
		Instagram: PlatformCredentials{
			ClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
			ClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		},
		Twitter: PlatformCredentials{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TWITTER_REDIRECT_URI", ""),
		},
		LinkedIn: PlatformCredentials{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", ""),
		},
		Google: PlatformCredentials{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		Tiktok: PlatformCredentials{
			ClientID:     getEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TIKTOK_REDIRECT_URI", ""),
		},
		FacebookVerifyToken:   getEnv("FACEBOOK_VERIFY_TOKEN", ""),
		TwitterConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", ""),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "socialsight_session"),
	}
}

// Credentials returns the OAuth credentials for a platform name. Unknown
// platforms get an empty set.
func (c *Config) Credentials(platform string) PlatformCredentials {
	switch platform {
	case "facebook":
		return c.Facebook
	case "instagram":
		return c.Instagram
	case "twitter":
		return c.Twitter
	case "linkedin":
		return c.LinkedIn
	case "google":
		return c.Google
	case "tiktok":
		return c.Tiktok
	default:
		return PlatformCredentials{}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
