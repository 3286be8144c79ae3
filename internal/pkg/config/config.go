package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultTag = "config_default"
const descriptionTag = "config_description"

var errNotStructPointer = errors.New("configuration must be a pointer to a struct")

// Parse fills the exported fields of appConfig from command line flags,
// environment variables and the config_default tags, in that order of
// precedence. Environment variables are prefixed with the upper-cased
// application name: application "lead-chat" reads field Port from LEAD_CHAT_PORT.
func Parse(appConfig any, applicationName string) {
	if err := ParseArgs(appConfig, applicationName, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("config.Parse failed")
	}
}

func ParseArgs(appConfig any, applicationName string, args []string) error {
	value := reflect.ValueOf(appConfig)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return errNotStructPointer
	}
	value = value.Elem()
	structType := value.Type()

	flags := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	settings := viper.New()
	settings.SetEnvPrefix(EnvPrefix(applicationName))
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		defaultValue := field.Tag.Get(defaultTag)
		description := field.Tag.Get(descriptionTag)

		switch field.Type.Kind() {
		case reflect.String:
			flags.String(field.Name, defaultValue, description)
		case reflect.Int, reflect.Int64:
			flags.String(field.Name, defaultValue, description)
		case reflect.Bool:
			flags.String(field.Name, defaultValue, description)
			flags.Lookup(field.Name).NoOptDefVal = "true"
		case reflect.Float64:
			flags.String(field.Name, defaultValue, description)
		default:
			return fmt.Errorf("field %s has unsupported type %s", field.Name, field.Type)
		}

		if err := settings.BindPFlag(field.Name, flags.Lookup(field.Name)); err != nil {
			return fmt.Errorf("viper.BindPFlag(%s) failed: %w", field.Name, err)
		}
		if err := settings.BindEnv(field.Name, EnvPrefix(applicationName)+"_"+strings.ToUpper(field.Name)); err != nil {
			return fmt.Errorf("viper.BindEnv(%s) failed: %w", field.Name, err)
		}
	}

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("flags parsing failed: %w", err)
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		target := value.Field(i)

		switch field.Type.Kind() {
		case reflect.String:
			target.SetString(settings.GetString(field.Name))
		case reflect.Int, reflect.Int64:
			target.SetInt(settings.GetInt64(field.Name))
		case reflect.Bool:
			target.SetBool(settings.GetBool(field.Name))
		case reflect.Float64:
			target.SetFloat(settings.GetFloat64(field.Name))
		}
	}

	return nil
}

// EnvPrefix converts an application name into the environment variable prefix.
func EnvPrefix(applicationName string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(applicationName))
}
