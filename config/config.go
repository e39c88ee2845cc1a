package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Booking rules
	StudentMin      int
	StudentMax      int
	ContentMaxRunes int
	ExtraHolidays   map[string]string

	// Slot lock
	LockTTL     time.Duration
	LockTimeout time.Duration

	// AWS S3 (period sheet archive)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// LINE booking notices
	LineChannelSecret string
	LineChannelToken  string
	LineGroupID       string

	// Server
	Port   string
	AppEnv string

	// Logging
	LogLevel string
	LogFile  string

	// Feature Toggles
	UseSheetArchive bool
	SkipMigrate     bool
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
}

var AppConfig *Config

func LoadConfig() {
	useSSM := getEnv("USE_SSM", "false") == "true"

	var (
		ssmClient *ssm.SSM
		paramMap  map[string]string
	)

	// Stage & base path for SSM (allows multi-env without code changes)
	basePath := getEnv("SSM_BASE_PATH", "/classbooking")
	stage := getEnv("STAGE", getEnv("APP_ENV", "production"))
	basePath = strings.TrimRight(basePath, "/")
	prefix := basePath + "/" + stage

	if useSSM {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(getEnv("AWS_REGION", "ap-northeast-1"))})
		if err != nil {
			log.Fatal("Failed to create AWS session:", err)
		}
		ssmClient = ssm.New(sess)
		log.Printf("Using AWS SSM Parameter Store (prefix=%s)", prefix)
		paramMap = fetchSSMParameters(ssmClient, prefix)
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using environment variables")
		}
	}

	// Helper accessor respecting map / env fallback
	getVal := func(key, def string) string {
		if useSSM {
			// map key stored uppercase
			uk := strings.ToUpper(key)
			if v, ok := paramMap[uk]; ok && v != "" {
				return v
			}
		}
		return getEnv(strings.ToUpper(key), def)
	}

	getInt := func(key string, def int) int {
		v := getVal(key, strconv.Itoa(def))
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid %s format: %v", key, err)
		}
		return n
	}

	getDuration := func(key, def string) time.Duration {
		v := getVal(key, def)
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid %s format: %v", key, err)
		}
		return d
	}

	AppConfig = &Config{
		DBHost:     getVal("DB_HOST", "localhost"),
		DBPort:     getVal("DB_PORT", "3306"),
		DBUser:     getVal("DB_USER", "root"),
		DBPassword: getVal("DB_PASSWORD", ""),
		DBName:     getVal("DB_NAME", "classbooking_go"),

		RedisHost:     getVal("REDIS_HOST", "localhost"),
		RedisPort:     getVal("REDIS_PORT", "6379"),
		RedisPassword: getVal("REDIS_PASSWORD", ""),

		StudentMin:      getInt("STUDENT_MIN", 1),
		StudentMax:      getInt("STUDENT_MAX", 5),
		ContentMaxRunes: getInt("CONTENT_MAX_RUNES", 30),
		ExtraHolidays:   parseHolidayList(getVal("EXTRA_HOLIDAYS", "")),

		LockTTL:     getDuration("SLOT_LOCK_TTL", "10s"),
		LockTimeout: getDuration("SLOT_LOCK_TIMEOUT", "3s"),

		AWSRegion:          getVal("AWS_REGION", "ap-northeast-1"),
		AWSAccessKeyID:     getVal("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getVal("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       getVal("S3_BUCKET_NAME", "classbooking-archive"),

		LineChannelSecret: getVal("LINE_CHANNEL_SECRET", ""),
		LineChannelToken:  getVal("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineGroupID:       getVal("LINE_GROUP_ID", ""),

		Port:   getVal("PORT", "3000"),
		AppEnv: getVal("APP_ENV", "development"),

		LogLevel: getVal("LOG_LEVEL", "info"),
		LogFile:  getVal("LOG_FILE", "logs/app.log"),

		UseSheetArchive: strings.ToLower(getVal("USE_SHEET_ARCHIVE", "false")) == "true",
		SkipMigrate:     strings.ToLower(getVal("SKIP_MIGRATE", "false")) == "true",
	}

	validateConfig(AppConfig, useSSM)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseHolidayList parses "2026-01-01=元旦,2026-02-17=春節" into a map.
// Entries without a name keep an empty name and still count as holidays.
func parseHolidayList(raw string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		date, name, _ := strings.Cut(part, "=")
		date = strings.TrimSpace(date)
		if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
			log.Printf("Warning: skipping malformed EXTRA_HOLIDAYS entry %q", part)
			continue
		}
		out[date] = strings.TrimSpace(name)
	}
	return out
}

// fetchSSMParameters reads all parameters under prefix and returns map with UPPERCASE keys.
func fetchSSMParameters(client *ssm.SSM, prefix string) map[string]string {
	out := make(map[string]string)
	next := aws.String("")
	for {
		in := &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
		}
		if *next != "" {
			in.NextToken = next
		}
		resp, err := client.GetParametersByPath(in)
		if err != nil {
			log.Printf("Warning: unable to fetch SSM parameters for prefix %s: %v", prefix, err)
			break
		}
		for _, p := range resp.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			name := *p.Name
			// last segment after '/'
			idx := strings.LastIndex(name, "/")
			key := name
			if idx >= 0 {
				key = name[idx+1:]
			}
			if key == "" {
				continue
			}
			out[strings.ToUpper(key)] = *p.Value
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		next = resp.NextToken
	}
	return out
}

func validateConfig(c *Config, usedSSM bool) {
	if c.StudentMin < 1 || c.StudentMax < c.StudentMin {
		log.Fatalf("Invalid student count range [%d,%d]", c.StudentMin, c.StudentMax)
	}
	if c.ContentMaxRunes <= 0 {
		log.Fatal("CONTENT_MAX_RUNES must be positive")
	}
	// Only enforce stricter rules in production
	if strings.ToLower(c.AppEnv) != "production" {
		return
	}
	if strings.TrimSpace(c.DBPassword) == "" {
		log.Fatalf("Missing required secret DB_PASSWORD in production (SSM=%v)", usedSSM)
	}
}
