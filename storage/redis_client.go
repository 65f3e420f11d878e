package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	// go-redis client library
	"github.com/redis/go-redis/v9"
)

// RedisClient interface for Redis operations
type RedisClient interface {
	// Basic String Operations
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Append(ctx context.Context, key, value string) *redis.IntCmd
	GetRange(ctx context.Context, key string, start, end int64) *redis.StringCmd
	SetRange(ctx context.Context, key string, offset int64, value string) *redis.IntCmd
	StrLen(ctx context.Context, key string) *redis.IntCmd
	GetSet(ctx context.Context, key string, value interface{}) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	GetEx(ctx context.Context, key string, expiration time.Duration) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	MSet(ctx context.Context, values ...interface{}) *redis.StatusCmd
	MSetNX(ctx context.Context, values ...interface{}) *redis.BoolCmd
	SetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	PSetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd

	// Counter Operations
	Incr(ctx context.Context, key string) *redis.IntCmd
	Decr(ctx context.Context, key string) *redis.IntCmd
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	DecrBy(ctx context.Context, key string, value int64) *redis.IntCmd
	IncrByFloat(ctx context.Context, key string, value float64) *redis.FloatCmd

	// Other Operations
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Close() error
}

// CustomRedisClient wraps the standard Redis client to implement our RedisClient interface
type CustomRedisClient struct {
	client *redis.Client
}

// NewCustomRedisClient creates a new custom Redis client
func NewCustomRedisClient(addr string, db int) (*CustomRedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &CustomRedisClient{client: client}, nil
}

// Set implements the RedisClient.Set method
func (c *CustomRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.client.Set(ctx, key, value, expiration)
}

// Get implements the RedisClient.Get method
func (c *CustomRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.client.Get(ctx, key)
}

// Append implements the RedisClient.Append method
func (c *CustomRedisClient) Append(ctx context.Context, key, value string) *redis.IntCmd {
	return c.client.Append(ctx, key, value)
}

// GetRange implements the RedisClient.GetRange method
func (c *CustomRedisClient) GetRange(ctx context.Context, key string, start, end int64) *redis.StringCmd {
	return c.client.GetRange(ctx, key, start, end)
}

// SetRange implements the RedisClient.SetRange method
func (c *CustomRedisClient) SetRange(ctx context.Context, key string, offset int64, value string) *redis.IntCmd {
	return c.client.SetRange(ctx, key, offset, value)
}

// StrLen implements the RedisClient.StrLen method
func (c *CustomRedisClient) StrLen(ctx context.Context, key string) *redis.IntCmd {
	return c.client.StrLen(ctx, key)
}

// GetSet implements the RedisClient.GetSet method
func (c *CustomRedisClient) GetSet(ctx context.Context, key string, value interface{}) *redis.StringCmd {
	return c.client.GetSet(ctx, key, value)
}

// GetDel implements the RedisClient.GetDel method
func (c *CustomRedisClient) GetDel(ctx context.Context, key string) *redis.StringCmd {
	return c.client.GetDel(ctx, key)
}

// GetEx implements the RedisClient.GetEx method
func (c *CustomRedisClient) GetEx(ctx context.Context, key string, expiration time.Duration) *redis.StringCmd {
	return c.client.GetEx(ctx, key, expiration)
}

// MGet implements the RedisClient.MGet method
func (c *CustomRedisClient) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	return c.client.MGet(ctx, keys...)
}

// MSet implements the RedisClient.MSet method
func (c *CustomRedisClient) MSet(ctx context.Context, values ...interface{}) *redis.StatusCmd {
	return c.client.MSet(ctx, values...)
}

// MSetNX implements the RedisClient.MSetNX method
func (c *CustomRedisClient) MSetNX(ctx context.Context, values ...interface{}) *redis.BoolCmd {
	return c.client.MSetNX(ctx, values...)
}

// SetEX implements the RedisClient.SetEX method
func (c *CustomRedisClient) SetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.client.SetEx(ctx, key, value, expiration)
}

// PSetEX implements the RedisClient.PSetEX method
func (c *CustomRedisClient) PSetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	// go-redis 库没有直接提供 PSetEx 方法，我们可以将毫秒转换为秒，然后使用 SetEx
	seconds := expiration / time.Millisecond * time.Second / 1000
	return c.client.SetEx(ctx, key, value, seconds)
}

// SetNX implements the RedisClient.SetNX method
func (c *CustomRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return c.client.SetNX(ctx, key, value, expiration)
}

// Incr implements the RedisClient.Incr method
func (c *CustomRedisClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	return c.client.Incr(ctx, key)
}

// Decr implements the RedisClient.Decr method
func (c *CustomRedisClient) Decr(ctx context.Context, key string) *redis.IntCmd {
	return c.client.Decr(ctx, key)
}

// IncrBy implements the RedisClient.IncrBy method
func (c *CustomRedisClient) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return c.client.IncrBy(ctx, key, value)
}

// DecrBy implements the RedisClient.DecrBy method
func (c *CustomRedisClient) DecrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	return c.client.DecrBy(ctx, key, value)
}

// IncrByFloat implements the RedisClient.IncrByFloat method
func (c *CustomRedisClient) IncrByFloat(ctx context.Context, key string, value float64) *redis.FloatCmd {
	return c.client.IncrByFloat(ctx, key, value)
}

// Del implements the RedisClient.Del method
func (c *CustomRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return c.client.Del(ctx, keys...)
}

// TTL implements the RedisClient.TTL method
func (c *CustomRedisClient) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return c.client.TTL(ctx, key)
}

// Close implements the RedisClient.Close method
func (c *CustomRedisClient) Close() error {
	return c.client.Close()
}

// RedisStore wraps a Redis client with CRDT support
type RedisStore struct {
	client RedisClient
	mu     sync.RWMutex
	values map[string]*Value // In-memory redis string state
}

// NullRedisClient implements RedisClient interface but does nothing (for Redis-free mode)
type NullRedisClient struct{}

func NewNullRedisClient() *NullRedisClient {
	return &NullRedisClient{}
}

func (n *NullRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	cmd.SetVal("OK")
	return cmd
}

func (n *NullRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (n *NullRedisClient) Append(ctx context.Context, key, value string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "append", key, value)
	cmd.SetVal(int64(len(value)))
	return cmd
}

func (n *NullRedisClient) GetRange(ctx context.Context, key string, start, end int64) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "getrange", key, start, end)
	cmd.SetVal("")
	return cmd
}

func (n *NullRedisClient) SetRange(ctx context.Context, key string, offset int64, value string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "setrange", key, offset, value)
	cmd.SetVal(int64(len(value)))
	return cmd
}

func (n *NullRedisClient) StrLen(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "strlen", key)
	cmd.SetVal(0)
	return cmd
}

func (n *NullRedisClient) GetSet(ctx context.Context, key string, value interface{}) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "getset", key, value)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (n *NullRedisClient) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "getdel", key)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (n *NullRedisClient) GetEx(ctx context.Context, key string, expiration time.Duration) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "getex", key)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (n *NullRedisClient) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	cmd := redis.NewSliceCmd(ctx, append([]interface{}{"mget"}, keys)...)
	result := make([]interface{}, len(keys))
	for i := range result {
		result[i] = nil
	}
	cmd.SetVal(result)
	return cmd
}

func (n *NullRedisClient) MSet(ctx context.Context, values ...interface{}) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, append([]interface{}{"mset"}, values...)...)
	cmd.SetVal("OK")
	return cmd
}

func (n *NullRedisClient) MSetNX(ctx context.Context, values ...interface{}) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, append([]interface{}{"msetnx"}, values...)...)
	cmd.SetVal(true)
	return cmd
}

func (n *NullRedisClient) SetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "setex", key, int(expiration.Seconds()), value)
	cmd.SetVal("OK")
	return cmd
}

func (n *NullRedisClient) PSetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "psetex", key, int(expiration.Milliseconds()), value)
	cmd.SetVal("OK")
	return cmd
}

func (n *NullRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "setnx", key, value)
	cmd.SetVal(true)
	return cmd
}

func (n *NullRedisClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	cmd.SetVal(1)
	return cmd
}

func (n *NullRedisClient) Decr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "decr", key)
	cmd.SetVal(-1)
	return cmd
}

func (n *NullRedisClient) IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incrby", key, value)
	cmd.SetVal(value)
	return cmd
}

func (n *NullRedisClient) DecrBy(ctx context.Context, key string, value int64) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "decrby", key, value)
	cmd.SetVal(-value)
	return cmd
}

func (n *NullRedisClient) IncrByFloat(ctx context.Context, key string, value float64) *redis.FloatCmd {
	cmd := redis.NewFloatCmd(ctx, "incrbyfloat", key, value)
	cmd.SetVal(value)
	return cmd
}

func (n *NullRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, append([]interface{}{"del"}, keys)...)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func (n *NullRedisClient) TTL(ctx context.Context, key string) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(ctx, time.Second, "ttl", key)
	cmd.SetVal(-1 * time.Second)
	return cmd
}

func (n *NullRedisClient) Close() error {
	return nil
}

// NewRedisStore creates a new Redis store with CRDT support
func NewRedisStore(addr string, redisDB int, replicaID string) (*RedisStore, error) {
	var client RedisClient
	var err error

	if addr == "" {
		// Use null client when no Redis address is provided (for testing or Redis-free mode)
		client = NewNullRedisClient()
	} else {
		client, err = NewCustomRedisClient(addr, redisDB)
		if err != nil {
			return nil, err
		}
	}

	store := &RedisStore{
		client: client,
		values: make(map[string]*Value),
	}
	return store, nil
}

// Set sets a value in Redis with LWW semantics only
func (rs *RedisStore) Set(ctx context.Context, key string, value *Value, ttl *time.Duration) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	existing, exists := rs.values[key]
	if exists {
		if value.Timestamp <= existing.Timestamp {
			return nil // Ignore older write
		}
	}

	rs.values[key] = value
	if ttl == nil {
		return rs.client.Set(ctx, key, value.String(), 0).Err()
	}
	return rs.client.Set(ctx, key, value.String(), *ttl).Err()
}

// SetTTL updates only the TTL on the given key in Redis, leaving value/timestamp intact
func (rs *RedisStore) SetTTL(ctx context.Context, key string, ttl *time.Duration) error {
	rs.mu.RLock()
	val, exists := rs.values[key]
	rs.mu.RUnlock()
	if !exists {
		// Try read from Redis to avoid losing value
		v, ok, err := rs.Get(ctx, key)
		if err != nil || !ok {
			return err
		}
		val = v
	}
	if ttl == nil {
		return rs.client.Set(ctx, key, val.String(), 0).Err()
	}
	return rs.client.Set(ctx, key, val.String(), *ttl).Err()
}

// Get gets a value from Redis using LWW or counter semantics
func (rs *RedisStore) Get(ctx context.Context, key string) (*Value, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if val, exists := rs.values[key]; exists {
		return val, true, nil
	}

	valStr, err := rs.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// Default to string type if not found in local state
	return NewStringValue(valStr, time.Now().UnixNano(), ""), true, nil
}

// Delete deletes a key from Redis
func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	return rs.client.Del(ctx, key).Err()
}

// GetTTL gets the TTL of a key from Redis
func (rs *RedisStore) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rs.client.TTL(ctx, key).Result()
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// Append appends a value to a string key
func (rs *RedisStore) Append(ctx context.Context, key string, value string) error {
	// 1. 获取当前的读写锁以确保线程安全
	// 2. 检查key是否已存在于内存中
	// 3. 如果存在，验证类型是否为字符串类型，若不是则返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，创建一个新的空字符串值
	// 6. 将新值追加到现有字符串后
	// 7. 更新时间戳为当前时间（LWW语义）
	// 8. 更新内存中的值
	// 9. 调用Redis的Append方法更新存储
	// 10. 返回操作结果
	return nil
}

// GetRange returns a substring of the string stored at a key
func (rs *RedisStore) GetRange(ctx context.Context, key string, start, end int64) (string, error) {
	// 1. 获取读锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型是否为字符串类型，若不是则返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，返回空字符串
	// 6. 处理负索引情况（Redis语义：-1表示最后一个字符）
	// 7. 确保start和end在有效范围内
	// 8. 提取并返回指定范围的子字符串
	// 9. 这是只读操作，不更新任何元数据
	return "", nil
}

// SetRange overwrites part of a string at key starting at the specified offset
func (rs *RedisStore) SetRange(ctx context.Context, key string, offset int64, value string) error {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型是否为字符串类型，若不是则返回错误
	// 4. 如果key不存在或不是字符串类型，创建一个新的空字符串值
	// 5. 如果offset大于当前字符串长度，用零字节填充
	// 6. 覆盖指定偏移位置的字符串内容
	// 7. 更新时间戳为当前时间（LWW语义）
	// 8. 更新内存中的值
	// 9. 调用Redis的SetRange方法更新存储
	// 10. 返回操作结果
	return nil
}

// StrLen returns the length of the string value stored at key
func (rs *RedisStore) StrLen(ctx context.Context, key string) (int64, error) {
	// 1. 获取读锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型是否为字符串类型，若不是则返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，返回0
	// 6. 计算并返回字符串的长度
	// 7. 这是只读操作，不更新任何元数据
	return 0, nil
}

// GetSet sets a new value and returns the old value
func (rs *RedisStore) GetSet(ctx context.Context, key string, value *Value) (*Value, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中，保存旧值用于返回
	// 3. 如果key不存在，从Redis获取旧值
	// 4. 应用LWW语义：仅当新值时间戳大于旧值时才更新
	// 5. 更新内存中的值
	// 6. 调用Redis的GetSet方法更新存储
	// 7. 返回旧值和操作结果
	return nil, nil
}

// GetDel gets the value and deletes the key
func (rs *RedisStore) GetDel(ctx context.Context, key string) (*Value, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中，保存旧值用于返回
	// 3. 如果key不存在，从Redis获取旧值
	// 4. 如果key存在，从内存中删除
	// 5. 调用Redis的Del方法删除存储中的值
	// 6. 返回旧值和操作结果
	return nil, nil
}

// GetEx gets the value and sets expiration
func (rs *RedisStore) GetEx(ctx context.Context, key string, expiration time.Duration) (*Value, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果key不存在，从Redis获取
	// 4. 如果Redis中也不存在，返回nil和错误
	// 5. 根据expiration参数设置过期时间
	// 6. 更新内存中值的TTL属性
	// 7. 设置ExpireAt属性为当前时间加上过期时间
	// 8. 调用Redis的GetEx或Expire方法更新存储
	// 9. 返回当前值和操作结果
	return nil, nil
}

// MGet returns the values of all specified keys
func (rs *RedisStore) MGet(ctx context.Context, keys ...string) (map[string]*Value, error) {
	// 1. 获取读锁以确保线程安全
	// 2. 初始化返回结果map
	// 3. 收集所有需要从Redis查询的keys（那些在内存中不存在的）
	// 4. 对于内存中存在的keys，直接添加到结果map
	// 5. 如果有需要查询的keys，调用Redis的MGet方法
	// 6. 将Redis查询结果转换为Value对象，添加到结果map
	// 7. 不需要更新内存状态，这是只读操作
	// 8. 返回结果map和操作结果
	return nil, nil
}

// MSet sets multiple key-value pairs
func (rs *RedisStore) MSet(ctx context.Context, keyValues map[string]*Value) error {
	// 1. 获取读写锁以确保线程安全
	// 2. 准备Redis MSet操作的参数
	// 3. 遍历keyValues map
	// 4. 对每个键值对，应用LWW语义：
	//    - 检查键是否已存在于内存中
	//    - 如果存在，仅当新值时间戳大于旧值时才更新
	// 5. 更新内存中的值
	// 6. 调用Redis的MSet方法批量更新存储
	// 7. 返回操作结果
	return nil
}

// MSetNX sets multiple key-value pairs only if none exist
func (rs *RedisStore) MSetNX(ctx context.Context, keyValues map[string]*Value) (bool, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查所有键是否都不存在于内存中
	// 3. 如果有任何键已存在，直接返回false
	// 4. 准备Redis MSetNX操作的参数
	// 5. 调用Redis的MSetNX方法尝试批量设置
	// 6. 如果Redis操作成功，更新内存中的所有值
	// 7. 返回操作结果（成功为true，失败为false）和错误信息
	return false, nil
}

// SetEX sets string value with expiration time in seconds
func (rs *RedisStore) SetEX(ctx context.Context, key string, value *Value, expiration time.Duration) error {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，应用LWW语义：仅当新值时间戳大于旧值时才更新
	// 4. 根据expiration参数设置过期时间
	// 5. 更新内存中值的TTL属性
	// 6. 设置ExpireAt属性为当前时间加上过期时间
	// 7. 调用Redis的SetEX方法更新存储
	// 8. 返回操作结果
	return nil
}

// PSetEX sets string value with expiration time in milliseconds
func (rs *RedisStore) PSetEX(ctx context.Context, key string, value *Value, expiration time.Duration) error {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，应用LWW语义：仅当新值时间戳大于旧值时才更新
	// 4. 根据expiration参数设置过期时间（毫秒级）
	// 5. 将毫秒转换为秒更新内存中值的TTL属性
	// 6. 设置ExpireAt属性为当前时间加上过期时间
	// 7. 调用Redis的PSetEX方法更新存储
	// 8. 返回操作结果
	return nil
}

// SetNX sets a key only if it doesn't exist
func (rs *RedisStore) SetNX(ctx context.Context, key string, value *Value, expiration time.Duration) (bool, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否已存在于内存中
	// 3. 如果已存在，直接返回false
	// 4. 如果不存在，检查Redis中是否存在
	// 5. 如果也不存在于Redis中，设置新值
	// 6. 如果指定了过期时间，设置TTL属性和ExpireAt属性
	// 7. 调用Redis的SetNX方法更新存储
	// 8. 如果设置成功，更新内存中的值
	// 9. 返回操作结果（成功为true，失败为false）和错误信息
	return false, nil
}

// Incr increments the integer value of a key by one
func (rs *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型：
	//    - 如果是计数器类型，增加计数
	//    - 如果是字符串类型，尝试将其转换为整数并增加
	//    - 如果转换失败，返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，创建一个新的计数器值并设为1
	// 6. 更新时间戳为当前时间
	// 7. 更新内存中的值
	// 8. 调用Redis的Incr方法更新存储
	// 9. 返回新的计数值和操作结果
	return 0, nil
}

// Decr decrements the integer value of a key by one
func (rs *RedisStore) Decr(ctx context.Context, key string) (int64, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型：
	//    - 如果是计数器类型，减少计数
	//    - 如果是字符串类型，尝试将其转换为整数并减少
	//    - 如果转换失败，返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，创建一个新的计数器值并设为-1
	// 6. 更新时间戳为当前时间
	// 7. 更新内存中的值
	// 8. 调用Redis的Decr方法更新存储
	// 9. 返回新的计数值和操作结果
	return 0, nil
}

// IncrBy increments the integer value of a key by a specified amount
func (rs *RedisStore) IncrBy(ctx context.Context, key string, increment int64) (int64, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型：
	//    - 如果是计数器类型，增加指定的计数值
	//    - 如果是字符串类型，尝试将其转换为整数并增加指定值
	//    - 如果转换失败，返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，创建一个新的计数器值并设为increment值
	// 6. 更新时间戳为当前时间
	// 7. 更新内存中的值
	// 8. 调用Redis的IncrBy方法更新存储
	// 9. 返回新的计数值和操作结果
	return 0, nil
}

// DecrBy decrements the integer value of a key by a specified amount
func (rs *RedisStore) DecrBy(ctx context.Context, key string, decrement int64) (int64, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型：
	//    - 如果是计数器类型，减少指定的计数值
	//    - 如果是字符串类型，尝试将其转换为整数并减少指定值
	//    - 如果转换失败，返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，创建一个新的计数器值并设为-decrement值
	// 6. 更新时间戳为当前时间
	// 7. 更新内存中的值
	// 8. 调用Redis的DecrBy方法更新存储
	// 9. 返回新的计数值和操作结果
	return 0, nil
}

// IncrByFloat increments the float value of a key by a specified amount
func (rs *RedisStore) IncrByFloat(ctx context.Context, key string, increment float64) (float64, error) {
	// 1. 获取读写锁以确保线程安全
	// 2. 检查key是否存在于内存中
	// 3. 如果存在，验证类型：
	//    - 如果是计数器类型，将其转换为浮点数并增加指定值
	//    - 如果是字符串类型，尝试将其转换为浮点数并增加指定值
	//    - 如果转换失败，返回错误
	// 4. 如果key不存在，从Redis获取
	// 5. 如果Redis中也不存在，创建一个新的字符串值表示浮点数，并设为increment值
	// 6. 更新时间戳为当前时间
	// 7. 更新内存中的值
	// 8. 调用Redis的IncrByFloat方法更新存储
	// 9. 返回新的浮点数值和操作结果
	return 0, nil
}
