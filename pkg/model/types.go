package model

import internalmodel "github.com/goliatone/go-fieldschema/internal/model"

// Kind re-exports the internal variant tag.
type Kind = internalmodel.Kind

const (
	KindObject      = internalmodel.KindObject
	KindArray       = internalmodel.KindArray
	KindString      = internalmodel.KindString
	KindNumber      = internalmodel.KindNumber
	KindBoolean     = internalmodel.KindBoolean
	KindSelect      = internalmodel.KindSelect
	KindFile        = internalmodel.KindFile
	KindActorSelect = internalmodel.KindActorSelect
	KindStringSpeed = internalmodel.KindStringSpeed
)

type Node = internalmodel.Node
type Field = internalmodel.Field
type Cell = internalmodel.Cell
type Config = internalmodel.Config
type Option = internalmodel.Option
type Hooks = internalmodel.Hooks
type Predicate = internalmodel.Predicate
type DefaultFunc = internalmodel.DefaultFunc
type DefaultUtils = internalmodel.DefaultUtils
type OptionsFunc = internalmodel.OptionsFunc
type Diagnostic = internalmodel.Diagnostic
type Diagnostics = internalmodel.Diagnostics

const (
	KeyColSpan        = internalmodel.KeyColSpan
	KeyDefaultValue   = internalmodel.KeyDefaultValue
	KeyDefaultValueFn = internalmodel.KeyDefaultValueFn
	KeyEnableWhen     = internalmodel.KeyEnableWhen
	KeyFieldID        = internalmodel.KeyFieldID
	KeyRequired       = internalmodel.KeyRequired
	KeyType           = internalmodel.KeyType
	KeyTemplate       = internalmodel.KeyTemplate
	KeyMinLen         = internalmodel.KeyMinLen
	KeyMaxLen         = internalmodel.KeyMaxLen
	KeyNeedI18n       = internalmodel.KeyNeedI18n
	KeyCodeLang       = internalmodel.KeyCodeLang
	KeyOptions        = internalmodel.KeyOptions
	KeyDynamicOptions = internalmodel.KeyDynamicOptions
	KeyExtends        = internalmodel.KeyExtends
	KeyTargetProp     = internalmodel.KeyTargetProp

	StringTypeSingleline = internalmodel.StringTypeSingleline
	StringTypeMultiline  = internalmodel.StringTypeMultiline
	StringTypeCode       = internalmodel.StringTypeCode

	I18nKeyPrefix = internalmodel.I18nKeyPrefix
)

const (
	CodeUnknownType       = internalmodel.CodeUnknownType
	CodeUnresolvedExtends = internalmodel.CodeUnresolvedExtends
	CodeInvalidExpression = internalmodel.CodeInvalidExpression
	CodeUnknownHook       = internalmodel.CodeUnknownHook
	CodeCoerced           = internalmodel.CodeCoerced
	CodeDefaultApplied    = internalmodel.CodeDefaultApplied
	CodeI18nKeyMinted     = internalmodel.CodeI18nKeyMinted
	CodeEnableWhenError   = internalmodel.CodeEnableWhenError
	CodeHookError         = internalmodel.CodeHookError
	CodeDisabled          = internalmodel.CodeDisabled
)

var (
	ErrMissingFieldSchema = internalmodel.ErrMissingFieldSchema
	ErrCycle              = internalmodel.ErrCycle
	ErrDuplicateField     = internalmodel.ErrDuplicateField
)
