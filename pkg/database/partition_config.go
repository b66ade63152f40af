package database

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ==================== 分区配置 ====================

// PartitionTableConfig 单张分区表的配置与建表语句
type PartitionTableConfig struct {
	TableName      string
	RetentionMonth int    // 保留月数，0 表示永久保留
	SQLContent     string // 建表 SQL
}

// PartitionConfig 全部分区表配置
type PartitionConfig struct {
	Tables []PartitionTableConfig
}

const partitionConfFile = "partition_tables.conf"

// LoadPartitionConfig 从内嵌文件系统加载分区配置与 SQL
func LoadPartitionConfig(embedFS embed.FS, root string) (*PartitionConfig, error) {
	return loadPartitionConfig(func(name string) ([]byte, error) {
		return embedFS.ReadFile(filepath.Join(root, name))
	})
}

// LoadPartitionConfigFromDir 从磁盘目录加载分区配置与 SQL
func LoadPartitionConfigFromDir(dir string) (*PartitionConfig, error) {
	return loadPartitionConfig(func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	})
}

// loadPartitionConfig 解析 conf 后按表名逐个读取同名 SQL 文件
func loadPartitionConfig(readFile func(string) ([]byte, error)) (*PartitionConfig, error) {
	confData, err := readFile(partitionConfFile)
	if err != nil {
		return nil, fmt.Errorf("读取分区配置失败: %w", err)
	}

	cfg := &PartitionConfig{}
	if err := cfg.parse(string(confData)); err != nil {
		return nil, err
	}

	for i := range cfg.Tables {
		name := cfg.Tables[i].TableName + ".sql"
		sqlData, err := readFile(name)
		if err != nil {
			return nil, fmt.Errorf("读取建表 SQL %s 失败: %w", name, err)
		}
		cfg.Tables[i].SQLContent = string(sqlData)
	}
	return cfg, nil
}

// parse 解析配置内容，每行 "表名, 保留月数"，# 开头为注释
func (c *PartitionConfig) parse(content string) error {
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		table, retentionStr, ok := strings.Cut(line, ",")
		if !ok {
			return fmt.Errorf("分区配置第 %d 行格式错误: %s", lineNum, line)
		}
		retention, err := strconv.Atoi(strings.TrimSpace(retentionStr))
		if err != nil {
			return fmt.Errorf("分区配置第 %d 行保留月数无效: %s", lineNum, retentionStr)
		}

		c.Tables = append(c.Tables, PartitionTableConfig{
			TableName:      strings.TrimSpace(table),
			RetentionMonth: retention,
		})
	}
	return scanner.Err()
}

// GetTableNames 全部分区表名
func (c *PartitionConfig) GetTableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.TableName
	}
	return names
}

// GetTable 按表名取配置，不存在返回 nil
func (c *PartitionConfig) GetTable(name string) *PartitionTableConfig {
	for i := range c.Tables {
		if c.Tables[i].TableName == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// IsPartitionedTable 表是否按分区管理
func (c *PartitionConfig) IsPartitionedTable(name string) bool {
	return c.GetTable(name) != nil
}
