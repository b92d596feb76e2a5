package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// ==================== 规格字段类型 ====================

// FieldType 规格字段类型
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeList    FieldType = "list"
)

// ValidFieldType 校验字段类型是否合法
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeList:
		return true
	}
	return false
}

// SpecificationField 规格字段定义
// 只允许定义在根分类上，子分类继承根分类的字段
type SpecificationField struct {
	Key       string    `json:"key"`
	LabelVi   string    `json:"labelVi"`
	LabelEn   string    `json:"labelEn"`
	Type      FieldType `json:"type"`
	SortOrder int       `json:"sortOrder"`
}

// SpecificationFields 规格字段列表（jsonb 存储）
type SpecificationFields = datatypes.JSONSlice[SpecificationField]

// SortFields 返回按 SortOrder 升序的副本
func SortFields(fields []SpecificationField) []SpecificationField {
	sorted := make([]SpecificationField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	return sorted
}

// ValidateFieldDefs 校验字段定义本身：key 非空且不重复，类型合法
func ValidateFieldDefs(fields []SpecificationField) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return fmt.Errorf("规格字段 key 不能为空")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("规格字段 key 重复: %s", key)
		}
		seen[key] = struct{}{}
		if !ValidFieldType(f.Type) {
			return fmt.Errorf("规格字段 %s 类型非法: %s", key, f.Type)
		}
	}
	return nil
}

// ==================== 规格值校验与裁剪 ====================

// CoerceSpecifications 按字段定义校验并规范化商品规格值
// 规则：
//   - 未定义的 key 直接拒绝
//   - string: 必须是字符串，空串裁剪
//   - number: 接受 JSON 数值或数字字符串，空值裁剪
//   - boolean: 必须是 bool，缺省按 false 处理（保留）
//   - list: 字符串数组，空数组裁剪，数组内空串剔除
func CoerceSpecifications(fields []SpecificationField, input map[string]interface{}) (datatypes.JSONMap, error) {
	defs := make(map[string]SpecificationField, len(fields))
	for _, f := range fields {
		defs[f.Key] = f
	}

	out := datatypes.JSONMap{}
	for key, raw := range input {
		def, ok := defs[key]
		if !ok {
			return nil, fmt.Errorf("未定义的规格字段: %s", key)
		}
		val, keep, err := coerceValue(def, raw)
		if err != nil {
			return nil, err
		}
		if keep {
			out[key] = val
		}
	}
	return out, nil
}

func coerceValue(def SpecificationField, raw interface{}) (interface{}, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	switch def.Type {
	case FieldTypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, false, fmt.Errorf("规格字段 %s 需要字符串", def.Key)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false, nil
		}
		return s, true, nil

	case FieldTypeNumber:
		switch v := raw.(type) {
		case float64:
			return v, true, nil
		case int:
			return float64(v), true, nil
		case int64:
			return float64(v), true, nil
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				return nil, false, nil
			}
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, false, fmt.Errorf("规格字段 %s 需要数值: %q", def.Key, v)
			}
			return n, true, nil
		default:
			return nil, false, fmt.Errorf("规格字段 %s 需要数值", def.Key)
		}

	case FieldTypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, false, fmt.Errorf("规格字段 %s 需要布尔值", def.Key)
		}
		return b, true, nil

	case FieldTypeList:
		items, ok := raw.([]interface{})
		if !ok {
			// 兼容已经是 []string 的调用方
			if ss, ok2 := raw.([]string); ok2 {
				items = make([]interface{}, len(ss))
				for i, s := range ss {
					items[i] = s
				}
			} else {
				return nil, false, fmt.Errorf("规格字段 %s 需要字符串数组", def.Key)
			}
		}
		cleaned := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, false, fmt.Errorf("规格字段 %s 的元素需要字符串", def.Key)
			}
			s = strings.TrimSpace(s)
			if s != "" {
				cleaned = append(cleaned, s)
			}
		}
		if len(cleaned) == 0 {
			return nil, false, nil
		}
		return cleaned, true, nil
	}
	return nil, false, fmt.Errorf("规格字段 %s 类型非法: %s", def.Key, def.Type)
}
